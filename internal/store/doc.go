// Package store provides the in-memory SQLite catalog backing the indexers.
//
// The catalog holds one row per indexed file and one row per extracted
// top-level symbol. It always opens an in-memory database, so catalog state
// is process-lifetime scoped and vanishes with the engine instance; nothing
// is ever persisted to disk.
//
// Two driver builds exist (see build_cgo.go / build_purego.go); the pure Go
// driver is the default.
package store
