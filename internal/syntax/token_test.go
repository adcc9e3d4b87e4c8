package syntax

import (
	"strings"
	"testing"
)

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{_EOF, "EOF"},
		{_Error, "ERROR"},
		{_Name, "NAME"},
		{_Number, "NUMBER"},
		{_Operator, "OP"},
		{_Lparen, "("},
		{_Rparen, ")"},
		{_Comma, ","},
		{_Semi, ";"},
		{_Def, "def"},
		{_Extern, "extern"},
		{_Binary, "binary"},
		{_Var, "var"},
		{Token(999), "token(999)"},
	}

	for _, tt := range tests {
		if got := tt.tok.String(); got != tt.want {
			t.Errorf("Token(%d).String() = %q, want %q", tt.tok, got, tt.want)
		}
	}
}

func TestTokenClasses(t *testing.T) {
	for tok := Token(0); tok < tokenCount; tok++ {
		kw := tok.IsKeyword()
		punct := tok.IsPunct()
		if kw && punct {
			t.Errorf("%s is both keyword and punctuation", tok)
		}
		if kw && LookupKeyword(tok.String()) != tok {
			t.Errorf("LookupKeyword(%q) = %s, want %s", tok.String(), LookupKeyword(tok.String()), tok)
		}
	}
	if !_Operator.IsOperator() || _Name.IsOperator() {
		t.Error("IsOperator misclassifies _Operator or _Name")
	}
	if !_EOF.IsEOF() {
		t.Error("_EOF.IsEOF() = false")
	}
}

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		ident string
		want  Token
	}{
		{"def", _Def},
		{"extern", _Extern},
		{"if", _If},
		{"then", _Then},
		{"else", _Else},
		{"for", _For},
		{"in", _In},
		{"binary", _Binary},
		{"unary", _Unary},
		{"var", _Var},
		{"define", _Name},
		{"Def", _Name},
		{"x", _Name},
	}

	for _, tt := range tests {
		if got := LookupKeyword(tt.ident); got != tt.want {
			t.Errorf("LookupKeyword(%q) = %s, want %s", tt.ident, got, tt.want)
		}
	}
}

func TestKeywords(t *testing.T) {
	got := strings.Join(Keywords(), " ")
	want := "def extern if then else for in binary unary var"
	if got != want {
		t.Errorf("Keywords() = %q, want %q", got, want)
	}
}
