// Package engine is the FastContext facade tying the pieces together.
//
// One FastContext instance serves one workspace root. It owns the backend
// selector, the file and symbol catalogs, the parallel executor, and the
// query cache. Search is the primary entry point; it returns aggregated
// per-file matches and treats "nothing found" as an ordinary empty result.
package engine
