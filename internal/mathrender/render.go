// Package mathrender turns the LaTeX source of math elements into HTML
// markup for the canvas and into plain Unicode text for raster export.
package mathrender

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrorMarkup replaces an equation that fails to render.
const ErrorMarkup = `<span class="math-error">Error rendering equation</span>`

// Renderer converts LaTeX into display markup.
type Renderer interface {
	Render(latex string) (string, error)
}

// Builtin renders the common LaTeX math subset (fractions, roots, scripts,
// Greek, operators, relations, arrows) into styled HTML spans.
type Builtin struct{}

func (Builtin) Render(latex string) (string, error) {
	g, err := parse(latex)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(`<span class="math-display">`)
	writeHTML(&b, g)
	b.WriteString(`</span>`)
	return b.String(), nil
}

// Markup renders latex with r and returns ErrorMarkup on failure.
func Markup(r Renderer, latex string) string {
	if r == nil {
		r = Builtin{}
	}
	out, err := r.Render(latex)
	if err != nil {
		return ErrorMarkup
	}
	return out
}

// Plain renders latex as a single line of Unicode text. Input that does not
// parse is returned unchanged.
func Plain(latex string) string {
	g, err := parse(latex)
	if err != nil {
		return latex
	}
	var b strings.Builder
	writeText(&b, g)
	return strings.TrimSpace(b.String())
}

// Validate reports whether latex parses.
func Validate(latex string) error {
	_, err := parse(latex)
	return err
}

func writeHTML(b *strings.Builder, n node) {
	switch n := n.(type) {
	case nil:
	case chars:
		for _, r := range n.s {
			if unicode.IsLetter(r) {
				b.WriteString("<i>" + html.EscapeString(string(r)) + "</i>")
				continue
			}
			b.WriteString(html.EscapeString(string(r)))
		}
	case symbol:
		b.WriteString(`<span class="mo">` + html.EscapeString(n.s) + `</span>`)
	case word:
		b.WriteString(`<span class="mtext">` + html.EscapeString(n.s) + `</span>`)
	case space:
		if n.wide {
			b.WriteString("&emsp;")
		} else {
			b.WriteString("&thinsp;")
		}
	case group:
		for _, it := range n.items {
			writeHTML(b, it)
		}
	case frac:
		b.WriteString(`<span class="mfrac"><span class="num">`)
		writeHTML(b, n.num)
		b.WriteString(`</span><span class="den">`)
		writeHTML(b, n.den)
		b.WriteString(`</span></span>`)
	case sqrt:
		b.WriteString(`<span class="msqrt">`)
		if n.index != nil {
			b.WriteString(`<sup class="root">`)
			writeHTML(b, n.index)
			b.WriteString(`</sup>`)
		}
		b.WriteString(`√<span class="radicand">`)
		writeHTML(b, n.body)
		b.WriteString(`</span></span>`)
	case script:
		writeHTML(b, n.base)
		if n.sup != nil {
			b.WriteString("<sup>")
			writeHTML(b, n.sup)
			b.WriteString("</sup>")
		}
		if n.sub != nil {
			b.WriteString("<sub>")
			writeHTML(b, n.sub)
			b.WriteString("</sub>")
		}
	}
}

func writeText(b *strings.Builder, n node) {
	switch n := n.(type) {
	case nil:
	case chars:
		b.WriteString(n.s)
	case symbol:
		b.WriteString(n.s)
	case word:
		b.WriteString(n.s)
	case space:
		b.WriteString(" ")
	case group:
		for _, it := range n.items {
			writeText(b, it)
		}
	case frac:
		b.WriteString(wrapped(n.num) + "/" + wrapped(n.den))
	case sqrt:
		if n.index != nil {
			b.WriteString(scripted(n.index, superscripts, "^"))
		}
		b.WriteString("√" + wrapped(n.body))
	case script:
		writeText(b, n.base)
		if n.sub != nil {
			b.WriteString(scripted(n.sub, subscripts, "_"))
		}
		if n.sup != nil {
			b.WriteString(scripted(n.sup, superscripts, "^"))
		}
	}
}

func textOf(n node) string {
	var b strings.Builder
	writeText(&b, n)
	return b.String()
}

// wrapped parenthesizes anything longer than one character.
func wrapped(n node) string {
	s := textOf(n)
	if utf8.RuneCountInString(s) <= 1 {
		return s
	}
	return "(" + s + ")"
}

// scripted maps s into super/subscript characters when every rune has one,
// otherwise falls back to marker notation.
func scripted(n node, table map[rune]rune, marker string) string {
	s := textOf(n)
	var b strings.Builder
	for _, r := range s {
		m, ok := table[r]
		if !ok {
			return marker + wrapped(n)
		}
		b.WriteRune(m)
	}
	return b.String()
}
