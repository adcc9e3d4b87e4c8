package syntax

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LexError reports a malformed token. It is fatal to the unit being parsed.
type LexError struct {
	Pos Pos
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Scanner performs lexical analysis on Kaleidoscope source text.
// A Scanner only moves forward; build a new one to rescan.
type Scanner struct {
	source // embedded character reader

	// Current token info
	tok    Token   // token type
	lit    string  // name, operator symbol, or number text
	val    float64 // numeric value (only valid when tok == _Number)
	tokPos Pos     // token start position
	err    *LexError

	pending *LexError // encoding error not yet attached to a token

	// Literal accumulation
	litBuf strings.Builder
}

// NewScanner creates a new Scanner for the given source.
// Malformed input surfaces as an _Error token; see Err.
func NewScanner(filename string, src io.Reader) *Scanner {
	s := &Scanner{}
	errh := func(line, col uint32, msg string) {
		if s.pending == nil {
			s.pending = &LexError{Pos: NewPos(filename, line, col), Msg: msg}
		}
	}
	s.source = *newSource(filename, src, errh)
	return s
}

// Next advances to the next token.
func (s *Scanner) Next() {
	s.err = nil

redo:
	for isWhitespace(s.ch) {
		s.nextch()
	}

	s.tokPos = s.pos()
	s.lit = ""
	s.val = 0

	switch {
	case s.ch < 0:
		s.tok = _EOF

	case s.ch == '#':
		s.skipLineComment()
		goto redo

	case isLetter(s.ch):
		s.scanIdent()

	case isDigit(s.ch), s.ch == '.' && isDigit(s.peek()):
		s.scanNumber()

	case s.ch == '(':
		s.nextch()
		s.tok = _Lparen
	case s.ch == ')':
		s.nextch()
		s.tok = _Rparen
	case s.ch == ',':
		s.nextch()
		s.tok = _Comma
	case s.ch == ';':
		s.nextch()
		s.tok = _Semi

	default:
		s.scanOperator()
	}

	// An encoding error belongs to this token once the bad character has
	// been consumed; one sitting on the lookahead character waits.
	if s.pending != nil && s.pending.Pos.Before(s.pos()) {
		if s.err == nil {
			s.tok = _Error
			s.err = s.pending
		}
		s.pending = nil
	}
}

// Token returns the current token type.
func (s *Scanner) Token() Token {
	return s.tok
}

// Literal returns the current token's text: the identifier, the operator
// symbol, or the digits of a number.
func (s *Scanner) Literal() string {
	return s.lit
}

// Value returns the value of the current number token.
func (s *Scanner) Value() float64 {
	return s.val
}

// Pos returns the current token's start position.
func (s *Scanner) Pos() Pos {
	return s.tokPos
}

// Err returns the error carried by the current _Error token, or nil.
func (s *Scanner) Err() *LexError {
	return s.err
}

// ReadErr returns the error, if any, hit while reading the underlying source.
func (s *Scanner) ReadErr() error {
	return s.rerr
}

// startLit begins accumulating a literal.
func (s *Scanner) startLit() {
	s.litBuf.Reset()
	s.litBuf.WriteRune(s.ch)
}

// continueLit adds the current character to the literal being accumulated.
func (s *Scanner) continueLit() {
	s.litBuf.WriteRune(s.ch)
}

// scanIdent scans an identifier or keyword.
func (s *Scanner) scanIdent() {
	s.startLit()
	s.nextch()

	for isAlnum(s.ch) {
		s.continueLit()
		s.nextch()
	}

	s.lit = s.litBuf.String()
	s.tok = LookupKeyword(s.lit)
}

// scanNumber scans the maximal run of digits and dots. A run holding more
// than one '.' is consumed whole and reported as malformed.
func (s *Scanner) scanNumber() {
	s.litBuf.Reset()
	dots := 0

	for isDigit(s.ch) || s.ch == '.' {
		if s.ch == '.' {
			dots++
		}
		s.continueLit()
		s.nextch()
	}

	s.lit = s.litBuf.String()
	if dots > 1 {
		s.tok = _Error
		s.err = &LexError{Pos: s.tokPos, Msg: fmt.Sprintf("malformed number %q", s.lit)}
		return
	}

	v, err := strconv.ParseFloat(s.lit, 64)
	if err != nil {
		s.tok = _Error
		s.err = &LexError{Pos: s.tokPos, Msg: fmt.Sprintf("malformed number %q", s.lit)}
		return
	}
	s.tok = _Number
	s.val = v
}

// scanOperator scans a single operator character. "==" is the only
// two-character operator.
func (s *Scanner) scanOperator() {
	s.startLit()
	first := s.ch
	s.nextch()
	if first == '=' && s.ch == '=' {
		s.continueLit()
		s.nextch()
	}
	s.lit = s.litBuf.String()
	s.tok = _Operator
}

// skipLineComment skips a # comment up to the end of the line.
func (s *Scanner) skipLineComment() {
	for s.ch >= 0 && s.ch != '\n' && s.ch != '\r' {
		s.nextch()
	}
}

// Tokenize scans src to EOF and returns a printable token stream, one
// token per line. It backs the -emit-tokens mode.
func Tokenize(filename string, src io.Reader) ([]string, error) {
	s := NewScanner(filename, src)
	var out []string
	for {
		s.Next()
		if s.ReadErr() != nil {
			return out, fmt.Errorf("read %s: %w", filename, s.ReadErr())
		}
		switch s.Token() {
		case _EOF:
			out = append(out, fmt.Sprintf("%s\tEOF", s.Pos()))
			return out, nil
		case _Error:
			return out, s.Err()
		case _Name, _Operator:
			out = append(out, fmt.Sprintf("%s\t%s\t%s", s.Pos(), s.Token(), s.Literal()))
		case _Number:
			out = append(out, fmt.Sprintf("%s\t%s\t%s", s.Pos(), s.Token(), strconv.FormatFloat(s.Value(), 'g', -1, 64)))
		default:
			out = append(out, fmt.Sprintf("%s\t%s", s.Pos(), s.Token()))
		}
	}
}
