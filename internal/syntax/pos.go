package syntax

import "fmt"

// Pos is a location in a Kaleidoscope source.
// The zero value is an invalid position.
type Pos struct {
	filename string // source name ("<stdin>", script path, or REPL line label)
	line     uint32 // 1-based line number
	col      uint32 // 1-based column number (byte offset in line)
}

// NewPos creates a new Pos with the given filename, line, and column.
// Line and column numbers are 1-based.
func NewPos(filename string, line, col uint32) Pos {
	return Pos{filename: filename, line: line, col: col}
}

// String formats the position as "filename:line:col", or "line:col"
// when the position has no filename.
func (p Pos) String() string {
	if p.filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.filename, p.line, p.col)
	}
	return fmt.Sprintf("%d:%d", p.line, p.col)
}

// IsValid reports whether the position is valid (line > 0).
func (p Pos) IsValid() bool {
	return p.line > 0
}

// Line returns the 1-based line number.
func (p Pos) Line() uint32 {
	return p.line
}

// Col returns the 1-based column number.
func (p Pos) Col() uint32 {
	return p.col
}

// Filename returns the source name.
func (p Pos) Filename() string {
	return p.filename
}

// Before reports whether p comes strictly before q in the same source.
// Positions from different sources are unordered.
func (p Pos) Before(q Pos) bool {
	if p.filename != q.filename {
		return false
	}
	return p.line < q.line || p.line == q.line && p.col < q.col
}
