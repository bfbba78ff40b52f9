package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedSource = errors.New("unsupported image source")

// SourceBytes returns the encoded image behind an element src: a data URI
// or a local file path.
func SourceBytes(src string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(src, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, fmt.Errorf("%w: malformed data uri", ErrUnsupportedSource)
		}
		if strings.HasSuffix(meta, ";base64") {
			return base64.StdEncoding.DecodeString(payload)
		}
		s, err := url.PathUnescape(payload)
		return []byte(s), err
	}
	if strings.Contains(src, "://") && !strings.HasPrefix(src, "file://") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, src)
	}
	return os.ReadFile(strings.TrimPrefix(src, "file://"))
}

// DecodeSource decodes an element src (PNG, JPEG, GIF or WebP).
func DecodeSource(src string) (image.Image, error) {
	data, err := SourceBytes(src)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// ImageSize returns the natural pixel size of an element src without
// decoding the pixels.
func ImageSize(src string) (width, height int, err error) {
	data, err := SourceBytes(src)
	if err != nil {
		return 0, 0, fmt.Errorf("read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// DataURI encodes raw image bytes with the given MIME type.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// fade returns img with its alpha multiplied by opacity.
func fade(img image.Image, opacity float64) image.Image {
	if opacity >= 1 {
		return img
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	mask := image.NewUniform(color.Alpha{A: uint8(max(0, opacity) * 255)})
	draw.DrawMask(out, b, img, b.Min, mask, image.Point{}, draw.Src)
	return out
}
