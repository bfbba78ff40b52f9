package render

import (
	"strconv"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	defaultFontSize = 16.0
	mathFontSize    = 20.0
)

type faceKey struct {
	mono bool
	size float64
}

var (
	parseFonts = sync.OnceValues(func() ([2]*truetype.Font, error) {
		regular, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return [2]*truetype.Font{}, err
		}
		mono, err := truetype.Parse(gomono.TTF)
		if err != nil {
			return [2]*truetype.Font{}, err
		}
		return [2]*truetype.Font{regular, mono}, nil
	})

	facesMu sync.Mutex
	faces   = map[faceKey]font.Face{}
)

// face returns a cached face for the CSS family and size.
func face(family string, size float64) (font.Face, error) {
	fonts, err := parseFonts()
	if err != nil {
		return nil, err
	}
	key := faceKey{mono: monospace(family), size: size}

	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[key]; ok {
		return f, nil
	}
	f := fonts[0]
	if key.mono {
		f = fonts[1]
	}
	fc := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	faces[key] = fc
	return fc, nil
}

func monospace(family string) bool {
	family = strings.ToLower(family)
	for _, m := range []string{"mono", "courier", "consolas", "menlo"} {
		if strings.Contains(family, m) {
			return true
		}
	}
	return false
}

// fontSize reads a CSS size such as "16px" or "12pt".
func fontSize(css string) float64 {
	css = strings.TrimSpace(css)
	pt := strings.HasSuffix(css, "pt")
	css = strings.TrimSuffix(strings.TrimSuffix(css, "px"), "pt")
	v, err := strconv.ParseFloat(css, 64)
	if err != nil || v <= 0 {
		return defaultFontSize
	}
	if pt {
		return v * 4 / 3
	}
	return v
}
