package syntax

import (
	"errors"
	"strings"
	"testing"
)

func TestSourceBasic(t *testing.T) {
	src := newSource("test", strings.NewReader("ab"), nil)

	if src.ch != 'a' || src.line != 1 || src.col != 1 {
		t.Errorf("got ch=%q pos=%d:%d, want ch='a' pos=1:1", src.ch, src.line, src.col)
	}

	if got := src.peek(); got != 'b' {
		t.Errorf("peek() = %q, want 'b'", got)
	}

	src.nextch()
	if src.ch != 'b' || src.col != 2 {
		t.Errorf("got ch=%q col=%d, want ch='b' col=2", src.ch, src.col)
	}
	if got := src.peek(); got != -1 {
		t.Errorf("peek() at last char = %d, want -1", got)
	}

	src.nextch()
	if src.ch != -1 {
		t.Errorf("ch = %d, want -1 (EOF)", src.ch)
	}
}

func TestSourceNewline(t *testing.T) {
	src := newSource("test", strings.NewReader("a\nb"), nil)

	src.nextch() // '\n' at 1:2
	if src.ch != '\n' || src.line != 1 || src.col != 2 {
		t.Errorf("got ch=%q pos=%d:%d, want ch='\\n' pos=1:2", src.ch, src.line, src.col)
	}

	src.nextch() // 'b' at 2:1
	if src.ch != 'b' || src.line != 2 || src.col != 1 {
		t.Errorf("got ch=%q pos=%d:%d, want ch='b' pos=2:1", src.ch, src.line, src.col)
	}
}

func TestSourceInvalidUTF8(t *testing.T) {
	var msgs []string
	errh := func(line, col uint32, msg string) {
		msgs = append(msgs, msg)
	}
	newSource("test", strings.NewReader("a\xffb"), errh).nextch()

	if len(msgs) != 1 || msgs[0] != "invalid UTF-8 encoding" {
		t.Errorf("errors = %q, want [\"invalid UTF-8 encoding\"]", msgs)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestSourceReadError(t *testing.T) {
	src := newSource("test", failingReader{}, nil)
	if src.rerr == nil {
		t.Fatal("rerr = nil, want read error")
	}
	if src.ch != -1 {
		t.Errorf("ch = %d, want -1 after read error", src.ch)
	}
}

func TestCharClasses(t *testing.T) {
	tests := []struct {
		r                    rune
		letter, digit, alnum bool
	}{
		{'a', true, false, true},
		{'Z', true, false, true},
		{'7', false, true, true},
		{'_', false, false, false},
		{'+', false, false, false},
		{'é', true, false, true},
	}

	for _, tt := range tests {
		if got := isLetter(tt.r); got != tt.letter {
			t.Errorf("isLetter(%q) = %v, want %v", tt.r, got, tt.letter)
		}
		if got := isDigit(tt.r); got != tt.digit {
			t.Errorf("isDigit(%q) = %v, want %v", tt.r, got, tt.digit)
		}
		if got := isAlnum(tt.r); got != tt.alnum {
			t.Errorf("isAlnum(%q) = %v, want %v", tt.r, got, tt.alnum)
		}
	}
}
