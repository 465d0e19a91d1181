// Package model defines the data structures shared across the sniff analysis
// pipeline.
package model

// Path represents a file system path.
type Path string

// ScopeType classifies where in a translation unit a construct lives.
type ScopeType string

const (
	// ScopeGlobal represents namespace/translation-unit level declarations.
	ScopeGlobal ScopeType = "global"

	// ScopeClass represents declarations inside a class or struct body.
	ScopeClass ScopeType = "class"

	// ScopeFunction represents statements inside a function body.
	ScopeFunction ScopeType = "function"
)

// CodeScope is a line range attributed to a single scope.
type CodeScope struct {
	Type      ScopeType
	StartLine int
	EndLine   int
	Name      string
}

// File identifies a single file on disk together with its content hash.
type File struct {
	FullPath  Path
	ShortPath Path
	Hash      string
}

// Source is one analyzable C++ file plus its companion header, when one
// exists next to it.
type Source struct {
	Origin *File
	Header *File
	Scopes []CodeScope
}
