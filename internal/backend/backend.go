package backend

import (
	"context"

	"github.com/codectx/fastcontext/pkg/types"
)

// SearchBackend provides uniform grep/glob operations over a workspace.
// Implementations must be read-only and safe for concurrent use. Paths in
// results are slash-separated and relative to the searched root.
type SearchBackend interface {
	// Name identifies the backend for introspection and logging
	Name() string

	// Grep finds lines matching pattern under root. Pattern is treated as a
	// regular expression; an invalid expression falls back to a literal
	// match. maxResults <= 0 means unbounded.
	Grep(ctx context.Context, root, pattern string, maxResults int) ([]types.GrepMatch, error)

	// Glob returns the files under root whose relative path matches the
	// doublestar pattern.
	Glob(ctx context.Context, root, pattern string) ([]string, error)

	// IsAvailable reports whether the backend can serve requests
	IsAvailable() bool
}

// Backend names used by the selector and exposed in status output
const (
	NameNative  = "native"
	NameRipgrep = "ripgrep"
)
