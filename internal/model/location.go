package model

import "fmt"

// SourceLocation is a position in a scanned translation unit. File paths are
// kept exactly as the front end reports them; no normalization, so the same
// header included under two spellings yields two locations.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset,omitempty"`
}

// String renders file:line:column for diagnostics.
func (l SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsZero reports whether the location was never set.
func (l SourceLocation) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}
