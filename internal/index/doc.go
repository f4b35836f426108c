// Package index builds the in-memory file and symbol catalogs.
//
// FileIndexer walks the workspace once and caches the file inventory so
// repeated pattern lookups never touch the filesystem again. SymbolIndexer
// layers a line-oriented lexical scan on top of the file catalog to record
// top-level declarations; it is deliberately not a parser, just per-language
// declaration regexes, which keeps indexing fast across mixed-language
// trees.
//
// Neither indexer watches the filesystem. Both are invalidated only by an
// explicit re-Index call.
package index
