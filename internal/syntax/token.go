// Package syntax implements lexical and syntactic analysis for Kaleidoscope:
// the scanner, the operator table, the AST, and the unit-at-a-time parser.
package syntax

import "fmt"

// Token represents the kind of a lexical token.
type Token uint

const (
	// Special tokens
	_EOF   Token = iota // end of input
	_Error              // lexical error; the scanner's Err holds the details

	// Literals
	_Name   // identifier: foo, x1
	_Number // numeric literal: 1, 4.5, .25

	// Operator carries its symbol in the literal: + - * < == = ! | ...
	_Operator

	// Punctuation
	_Lparen // (
	_Rparen // )
	_Comma  // ,
	_Semi   // ;

	// Keywords
	_Def
	_Extern
	_If
	_Then
	_Else
	_For
	_In
	_Binary
	_Unary
	_Var

	tokenCount
)

// tokenNames maps tokens to their string representation.
var tokenNames = [...]string{
	_EOF:   "EOF",
	_Error: "ERROR",

	_Name:   "NAME",
	_Number: "NUMBER",

	_Operator: "OP",

	_Lparen: "(",
	_Rparen: ")",
	_Comma:  ",",
	_Semi:   ";",

	_Def:    "def",
	_Extern: "extern",
	_If:     "if",
	_Then:   "then",
	_Else:   "else",
	_For:    "for",
	_In:     "in",
	_Binary: "binary",
	_Unary:  "unary",
	_Var:    "var",
}

// String returns the string representation of the token.
func (t Token) String() string {
	if t < tokenCount {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", t)
}

// IsKeyword reports whether t is a keyword token.
func (t Token) IsKeyword() bool {
	return t >= _Def && t <= _Var
}

// IsPunct reports whether t is one of the fixed punctuation tokens.
func (t Token) IsPunct() bool {
	return t >= _Lparen && t <= _Semi
}

// IsOperator reports whether t is an operator token.
func (t Token) IsOperator() bool {
	return t == _Operator
}

// IsEOF reports whether t is the EOF token.
func (t Token) IsEOF() bool {
	return t == _EOF
}

// keywords maps keyword strings to their token type.
var keywords = map[string]Token{
	"def":    _Def,
	"extern": _Extern,
	"if":     _If,
	"then":   _Then,
	"else":   _Else,
	"for":    _For,
	"in":     _In,
	"binary": _Binary,
	"unary":  _Unary,
	"var":    _Var,
}

// LookupKeyword returns the token for the given identifier string.
// Keywords win over generic identifiers.
func LookupKeyword(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return _Name
}

// Keywords returns the keyword spellings in declaration order.
func Keywords() []string {
	var out []string
	for t := _Def; t <= _Var; t++ {
		out = append(out, tokenNames[t])
	}
	return out
}
