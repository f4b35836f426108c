// Package types provides shared type definitions for the FastContext engine.
//
// This package defines the result model used across components: line ranges,
// per-file match aggregates, full search results, and the tool-call envelope
// used by the parallel executor and the agent.
//
// # Core Types
//
// LineRange is a 1-indexed, inclusive span of lines with an optional cached
// content string and a relevance score in [0, 1]:
//
//	r := types.LineRange{Start: 10, End: 24, Relevance: 0.8}
//
// Overlapping ranges fold into their bounding union:
//
//	merged, err := a.Merge(b)
//	// merged.Start == min(a.Start, b.Start)
//	// merged.End   == max(a.End, b.End)
//
// FileMatch aggregates the ranges matched within one file; inserting a range
// that overlaps existing ones collapses them so the range list stays sorted
// and non-overlapping:
//
//	fm := types.NewFileMatch("internal/auth/login.go")
//	fm.AddRange(types.LineRange{Start: 10, End: 14})
//
// FastContextResult is the unit returned by every search entry point. Files
// are unique by path; inserting a match for an existing path merges ranges,
// sums match counts, and keeps the higher relevance:
//
//	res := types.NewFastContextResult("authenticate")
//	res.AddFileMatch(fm)
//	res.SortByRelevance()
//
// # Tool Calls
//
// ToolName is a closed enum of the operations the executor can dispatch.
// ToolCallBatch bounds how many calls are queued together; Add beyond
// capacity returns false rather than panicking. ToolResult carries a
// structured per-task outcome so one task's failure never surfaces as an
// exception to its siblings.
package types
