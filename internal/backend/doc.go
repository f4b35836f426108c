// Package backend implements the pluggable search backends and the
// per-workspace backend selector.
//
// Two variants exist: a native in-process scanner that is always available,
// and a ripgrep-backed variant that shells out to an installed rg binary.
// The ripgrep variant never propagates a utility failure as an error; on any
// failure it yields the same empty result shape the native variant would, so
// callers stay backend-agnostic.
//
// The Selector picks a backend once per workspace using a capped file-count
// probe: small trees favor the native scanner's lower fixed overhead, large
// trees favor ripgrep's faster scanning once the process-spawn cost is
// amortized. The decision is memoized for the selector's lifetime.
package backend
