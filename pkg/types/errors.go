package types

import "errors"

// Domain errors for type validation
var (
	// Line range errors
	ErrInvalidRange   = errors.New("invalid line range: start must be >= 1 and end >= start")
	ErrNonOverlapping = errors.New("cannot merge non-overlapping ranges")

	// Result errors
	ErrInvalidRelevanceScore = errors.New("relevance score must be between 0 and 1")
	ErrEmptyPath             = errors.New("file path cannot be empty")

	// Tool dispatch errors
	ErrUnknownTool = errors.New("unknown tool name")
	ErrMissingArg  = errors.New("required argument missing")
)
