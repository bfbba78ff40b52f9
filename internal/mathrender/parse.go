package mathrender

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrUnbalanced      = errors.New("unbalanced braces")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
)

type node interface{ isNode() }

// chars is a run of literal input characters.
type chars struct{ s string }

// symbol is a command resolved to its display form.
type symbol struct{ s string }

// word is upright text such as \text{...} or a function name.
type word struct{ s string }

type space struct{ wide bool }

type group struct{ items []node }

type frac struct{ num, den node }

type sqrt struct{ index, body node }

type script struct{ base, sup, sub node }

func (chars) isNode() {}
func (symbol) isNode() {}
func (word) isNode() {}
func (space) isNode() {}
func (group) isNode() {}
func (frac) isNode() {}
func (sqrt) isNode() {}
func (script) isNode() {}

type parser struct {
	src string
	pos int
}

func parse(latex string) (group, error) {
	p := &parser{src: latex}
	return p.list(false)
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) skipSpace() {
	for !p.eof() && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

// list parses items until end of input or, inside a group, the closing brace.
func (p *parser) list(inGroup bool) (group, error) {
	var items []node
	for {
		p.skipSpace()
		if p.eof() {
			if inGroup {
				return group{}, fmt.Errorf("%w: missing }", ErrUnbalanced)
			}
			return group{items: items}, nil
		}
		switch c := p.src[p.pos]; c {
		case '}':
			if !inGroup {
				return group{}, fmt.Errorf("%w: unexpected } at %d", ErrUnbalanced, p.pos)
			}
			p.pos++
			return group{items: items}, nil
		case '^', '_':
			p.pos++
			arg, err := p.argument()
			if err != nil {
				return group{}, err
			}
			var base node = group{}
			if n := len(items); n > 0 {
				base, items = items[n-1], items[:n-1]
			}
			s, ok := base.(script)
			if !ok || (c == '^' && s.sup != nil) || (c == '_' && s.sub != nil) {
				s = script{base: base}
			}
			if c == '^' {
				s.sup = arg
			} else {
				s.sub = arg
			}
			items = append(items, s)
		default:
			n, err := p.atom()
			if err != nil {
				return group{}, err
			}
			items = append(items, n)
		}
	}
}

// argument reads the operand of a command or script: one atom.
func (p *parser) argument() (node, error) {
	p.skipSpace()
	if p.eof() || p.src[p.pos] == '}' || p.src[p.pos] == '^' || p.src[p.pos] == '_' {
		return nil, fmt.Errorf("%w at %d", ErrMissingArgument, p.pos)
	}
	return p.atom()
}

func (p *parser) atom() (node, error) {
	switch p.src[p.pos] {
	case '{':
		p.pos++
		return p.list(true)
	case '\\':
		return p.command()
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return chars{s: string(r)}, nil
}

func (p *parser) command() (node, error) {
	p.pos++
	if p.eof() {
		return nil, fmt.Errorf("%w: trailing backslash", ErrUnknownCommand)
	}
	start := p.pos
	for !p.eof() && isLetter(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		p.pos++
	}
	name := p.src[start:p.pos]

	switch name {
	case "frac", "dfrac", "tfrac":
		num, err := p.argument()
		if err != nil {
			return nil, fmt.Errorf("\\%s numerator: %w", name, err)
		}
		den, err := p.argument()
		if err != nil {
			return nil, fmt.Errorf("\\%s denominator: %w", name, err)
		}
		return frac{num: num, den: den}, nil

	case "sqrt":
		var index node
		p.skipSpace()
		if !p.eof() && p.src[p.pos] == '[' {
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: missing ] in \\sqrt", ErrUnbalanced)
			}
			g, err := parse(p.src[p.pos+1 : p.pos+end])
			if err != nil {
				return nil, err
			}
			index = g
			p.pos += end + 1
		}
		body, err := p.argument()
		if err != nil {
			return nil, fmt.Errorf("\\sqrt: %w", err)
		}
		return sqrt{index: index, body: body}, nil

	case "text", "textrm", "mathrm", "operatorname":
		s, err := p.rawGroup()
		if err != nil {
			return nil, fmt.Errorf("\\%s: %w", name, err)
		}
		return word{s: s}, nil

	case "mathbb":
		s, err := p.rawGroup()
		if err != nil {
			return nil, fmt.Errorf("\\mathbb: %w", err)
		}
		return symbol{s: strings.Map(blackboard, s)}, nil

	case "mathbf", "mathit", "boldsymbol":
		return p.argument()

	case "displaystyle", "textstyle":
		return group{}, nil

	case "left", "right", "big", "Big", "bigg", "Bigg":
		p.skipSpace()
		if !p.eof() && p.src[p.pos] == '.' {
			p.pos++
		}
		return group{}, nil

	case ",", ":", ";", " ", "!":
		return space{}, nil
	case "quad", "qquad", "\\":
		return space{wide: true}, nil
	case "|":
		return symbol{s: "‖"}, nil
	case "{", "}", "%", "$", "&", "#", "_":
		return chars{s: name}, nil
	}

	if s, ok := functions[name]; ok {
		return word{s: s}, nil
	}
	if s, ok := symbols[name]; ok {
		return symbol{s: s}, nil
	}
	return nil, fmt.Errorf("%w: \\%s", ErrUnknownCommand, name)
}

// rawGroup reads a braced argument verbatim.
func (p *parser) rawGroup() (string, error) {
	p.skipSpace()
	if p.eof() || p.src[p.pos] != '{' {
		return "", ErrMissingArgument
	}
	depth := 0
	for i := p.pos; i < len(p.src); i++ {
		switch p.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := p.src[p.pos+1 : i]
				p.pos = i + 1
				return s, nil
			}
		}
	}
	return "", fmt.Errorf("%w: missing }", ErrUnbalanced)
}

func isLetter(c byte) bool {
	return c < utf8.RuneSelf && unicode.IsLetter(rune(c))
}

func blackboard(r rune) rune {
	if s, ok := doubleStruck[r]; ok {
		return s
	}
	return r
}
