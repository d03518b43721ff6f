package action

import (
	"fmt"
	"strconv"
	"strings"
)

// ParamKind is the type tag of a Param.
type ParamKind uint8

const (
	ParamNone ParamKind = iota
	ParamString
	ParamNumber
	ParamBool
)

func (k ParamKind) String() string {
	switch k {
	case ParamString:
		return "String"
	case ParamNumber:
		return "Number"
	case ParamBool:
		return "Bool"
	default:
		return "None"
	}
}

// Param is one positional action argument.
type Param struct {
	Kind   ParamKind
	Str    string
	Number float64
	Bool   bool
}

// StringParam, NumberParam and BoolParam build typed parameters.
func StringParam(s string) Param  { return Param{Kind: ParamString, Str: s} }
func NumberParam(n float64) Param { return Param{Kind: ParamNumber, Number: n} }
func BoolParam(b bool) Param      { return Param{Kind: ParamBool, Bool: b} }

func (p Param) String() string {
	switch p.Kind {
	case ParamString:
		return strconv.Quote(p.Str)
	case ParamNumber:
		return strconv.FormatFloat(p.Number, 'g', -1, 64)
	case ParamBool:
		return strconv.FormatBool(p.Bool)
	default:
		return "<none>"
	}
}

// Action is a parsed `name(arg, ...)` expression.
type Action struct {
	Name   string
	Params []Param

	// Trailing holds anything found after the closing bracket. Parsing still
	// succeeds; callers should report it.
	Trailing string
}

func (a Action) String() string {
	if len(a.Params) == 0 {
		return a.Name
	}
	parts := make([]string, len(a.Params))
	for i, p := range a.Params {
		parts[i] = p.String()
	}
	return a.Name + "(" + strings.Join(parts, ", ") + ")"
}

// SyntaxError reports malformed action text.
type SyntaxError struct {
	Input    string
	Offset   int
	Expected []Kind
	Found    *Token // nil at end of input
	Reason   string // set for lexical errors
}

func (e *SyntaxError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("action %q: %s at offset %d", e.Input, e.Reason, e.Offset)
	}
	want := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		want[i] = k.String()
	}
	found := "end of input"
	if e.Found != nil {
		found = fmt.Sprintf("%s %q", e.Found.Kind, e.Found.Text)
	}
	return fmt.Sprintf("action %q: expected %s, found %s at offset %d",
		e.Input, strings.Join(want, " or "), found, e.Offset)
}

var literalKinds = []Kind{KindString, KindNumber, KindBool}

type parser struct {
	lex   *Lexer
	input string
}

// Parse parses action text such as `move(1, "left", true)`.
func Parse(input string) (*Action, error) {
	p := &parser{lex: NewLexer(input), input: input}
	return p.parse()
}

func (p *parser) parse() (*Action, error) {
	name, err := p.expect(KindIdent)
	if err != nil {
		return nil, err
	}
	act := &Action{Name: name.Text}

	tok, ok, err := p.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return act, nil
	}
	if tok.Kind != KindLeft {
		return nil, p.unexpected(&tok, KindLeft)
	}

	tok, ok, err = p.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, p.unexpected(nil, KindRight, KindString, KindNumber, KindBool)
	}
	if tok.Kind != KindRight {
		for {
			param, err := p.param(tok)
			if err != nil {
				return nil, err
			}
			act.Params = append(act.Params, param)

			sep, ok, err := p.next()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, p.unexpected(nil, KindComma, KindRight)
			}
			if sep.Kind == KindRight {
				break
			}
			if sep.Kind != KindComma {
				return nil, p.unexpected(&sep, KindComma, KindRight)
			}

			tok, ok, err = p.next()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, p.unexpected(nil, literalKinds...)
			}
		}
	}

	act.Trailing = strings.TrimSpace(p.lex.Rest())
	return act, nil
}

func (p *parser) param(tok Token) (Param, error) {
	switch tok.Kind {
	case KindString:
		return StringParam(tok.Text[1 : len(tok.Text)-1]), nil
	case KindNumber:
		n, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return Param{}, &SyntaxError{Input: p.input, Offset: tok.Offset, Reason: err.Error()}
		}
		return NumberParam(n), nil
	case KindBool:
		return BoolParam(tok.Text == "true"), nil
	default:
		return Param{}, p.unexpected(&tok, literalKinds...)
	}
}

// next returns the next non-space token.
func (p *parser) next() (Token, bool, error) {
	for {
		tok, ok, err := p.lex.Next()
		if err != nil || !ok || tok.Kind != KindSpace {
			return tok, ok, err
		}
	}
}

func (p *parser) expect(kind Kind) (Token, error) {
	tok, ok, err := p.next()
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, p.unexpected(nil, kind)
	}
	if tok.Kind != kind {
		return Token{}, p.unexpected(&tok, kind)
	}
	return tok, nil
}

func (p *parser) unexpected(found *Token, expected ...Kind) error {
	off := p.lex.Offset()
	if found != nil {
		off = found.Offset
	}
	return &SyntaxError{Input: p.input, Offset: off, Expected: expected, Found: found}
}
