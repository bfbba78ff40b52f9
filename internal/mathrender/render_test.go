package mathrender_test

import (
	"errors"
	"strings"
	"testing"

	"canvasnotes/internal/mathrender"
)

const quadratic = `x = \frac{-b \pm \sqrt{b^2-4ac}}{2a}`

func TestPlain(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{quadratic, "x=(-b±√(b²-4ac))/(2a)"},
		{`\alpha + \beta`, "α+β"},
		{`x_1^2`, "x₁²"},
		{`e^{i\pi}`, "e^(iπ)"},
		{`\sqrt[3]{x}`, "³√x"},
		{`\sin \theta`, "sinθ"},
		{`\mathbb{R}^n`, "ℝⁿ"},
		{`\text{area} = \pi r^2`, "area=πr²"},
		{`\left( a \right)`, "(a)"},
	}
	for _, tt := range tests {
		if got := mathrender.Plain(tt.in); got != tt.want {
			t.Errorf("Plain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlain_InvalidReturnsSource(t *testing.T) {
	if got := mathrender.Plain(`\frac{1}`); got != `\frac{1}` {
		t.Errorf("got %q", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{quadratic, nil},
		{`{x`, mathrender.ErrUnbalanced},
		{`x}`, mathrender.ErrUnbalanced},
		{`\nosuch`, mathrender.ErrUnknownCommand},
		{`x^`, mathrender.ErrMissingArgument},
		{`\frac{a}`, mathrender.ErrMissingArgument},
		{`\sqrt[3{x}`, mathrender.ErrUnbalanced},
	}
	for _, tt := range tests {
		err := mathrender.Validate(tt.in)
		if tt.want == nil && err != nil {
			t.Errorf("Validate(%q) = %v", tt.in, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("Validate(%q) = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestBuiltinHTML(t *testing.T) {
	out, err := mathrender.Builtin{}.Render(quadratic)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`class="math-display"`, `class="mfrac"`, `class="msqrt"`, `<sup>2</sup>`, `±`} {
		if !strings.Contains(out, want) {
			t.Errorf("markup missing %q:\n%s", want, out)
		}
	}
}

func TestBuiltinEscapes(t *testing.T) {
	out, err := mathrender.Builtin{}.Render(`a < b \text{<script>}`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<script>") || !strings.Contains(out, "&lt;") {
		t.Errorf("markup not escaped: %s", out)
	}
}

func TestMarkupFallsBack(t *testing.T) {
	if got := mathrender.Markup(nil, `\frac{`); got != mathrender.ErrorMarkup {
		t.Errorf("got %q", got)
	}
}

func TestPushRecent(t *testing.T) {
	var recent []string
	for i := 0; i < 12; i++ {
		recent = mathrender.PushRecent(recent, string(rune('a'+i)))
	}
	if len(recent) != mathrender.RecentLimit {
		t.Fatalf("len = %d, want %d", len(recent), mathrender.RecentLimit)
	}
	if recent[0] != "l" || recent[9] != "c" {
		t.Errorf("order = %v", recent)
	}

	recent = mathrender.PushRecent(recent, "e")
	if recent[0] != "e" || len(recent) != mathrender.RecentLimit {
		t.Errorf("re-push should move to front without growing: %v", recent)
	}
	count := 0
	for _, s := range recent {
		if s == "e" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate kept: %v", recent)
	}
}
