package types

import "errors"

// SymbolKind classifies a top-level declaration found by the lexical scan
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindStruct    SymbolKind = "struct"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindConst     SymbolKind = "const"
	KindVar       SymbolKind = "var"
	KindClass     SymbolKind = "class"
)

// Symbol is a top-level declaration recorded by the SymbolIndexer. It comes
// from a line-oriented lexical scan, not a parser, so it carries only what a
// regex over a declaration line can see: name, kind, and location.
type Symbol struct {
	Name string     `json:"name"`
	Kind SymbolKind `json:"kind"`
	Path string     `json:"path"` // Relative to the workspace root
	Line int        `json:"line"` // 1-indexed declaration line
}

// ValidateKind checks if the symbol kind is valid
func (s *Symbol) ValidateKind() error {
	switch s.Kind {
	case KindFunction, KindMethod, KindStruct, KindInterface, KindType, KindConst, KindVar, KindClass:
		return nil
	default:
		return errors.New("invalid symbol kind")
	}
}

// Validate performs comprehensive validation of the symbol
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return errors.New("symbol name is required")
	}
	if err := s.ValidateKind(); err != nil {
		return err
	}
	if s.Path == "" {
		return ErrEmptyPath
	}
	if s.Line < 1 {
		return errors.New("invalid position: line numbers must be positive")
	}
	return nil
}
