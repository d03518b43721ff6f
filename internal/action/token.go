// Package action tokenizes and parses the action mini-language carried in
// meta layer names, e.g. `pivot`, `transform(0.5)` or `move(1, "left", true)`.
package action

import (
	"fmt"
	"regexp"
)

// Kind identifies a token class.
type Kind uint8

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindIdent
	KindComma
	KindLeft
	KindRight
	KindSpace
)

var kindNames = [...]string{
	KindString: "string",
	KindNumber: "number",
	KindBool:   "bool",
	KindIdent:  "id",
	KindComma:  "comma",
	KindLeft:   "left_bracket",
	KindRight:  "right_bracket",
	KindSpace:  "space",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Token is a lexeme together with its byte offset in the input.
type Token struct {
	Kind   Kind
	Text   string
	Offset int
}

type rule struct {
	kind Kind
	re   *regexp.Regexp
}

// rules is read-only after init and shared by every parse. Order breaks ties
// between equally long matches.
var rules = []rule{
	{KindString, anchored(`"[^"]*"`)},
	{KindNumber, anchored(`[-+]?\d+\.\d+([eE][-+]?\d+)?|[-+]?\d+`)},
	{KindBool, anchored(`true|false`)},
	{KindIdent, anchored(`[a-zA-Z0-9_\-]+`)},
	{KindComma, anchored(`,`)},
	{KindLeft, anchored(`\(`)},
	{KindRight, anchored(`\)`)},
	{KindSpace, anchored(`\s+`)},
}

func anchored(expr string) *regexp.Regexp {
	re := regexp.MustCompile(`^(?:` + expr + `)`)
	re.Longest()
	return re
}

// Lexer produces tokens on demand, including whitespace tokens.
type Lexer struct {
	input string
	pos   int
}

// NewLexer returns a lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Offset reports the byte offset of the next unread character.
func (l *Lexer) Offset() int { return l.pos }

// Rest returns the unread input.
func (l *Lexer) Rest() string { return l.input[l.pos:] }

// Next returns the next token. ok is false at end of input. A position no rule
// matches is a *SyntaxError.
func (l *Lexer) Next() (tok Token, ok bool, err error) {
	if l.pos >= len(l.input) {
		return Token{}, false, nil
	}
	rest := l.input[l.pos:]
	best := -1
	bestLen := 0
	for i, r := range rules {
		m := r.re.FindString(rest)
		if len(m) > bestLen {
			best, bestLen = i, len(m)
		}
	}
	if best < 0 {
		return Token{}, false, &SyntaxError{
			Input:  l.input,
			Offset: l.pos,
			Reason: fmt.Sprintf("unexpected character %q", []rune(rest)[0]),
		}
	}
	tok = Token{Kind: rules[best].kind, Text: rest[:bestLen], Offset: l.pos}
	l.pos += bestLen
	return tok, true, nil
}

// Tokenize lexes the whole input. It is mostly useful for diagnostics and tests.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var toks []Token
	for {
		tok, ok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}
