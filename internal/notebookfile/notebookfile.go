package notebookfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"canvasnotes/internal/domain"
)

// ErrInvalidFormat is wrapped by every structural problem found while loading.
var ErrInvalidFormat = errors.New("invalid notebook file format")

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFileName is the download name for a notebook: whitespace runs in the
// name become underscores, plus a .json extension.
func ExportFileName(name string) string {
	return whitespaceRun.ReplaceAllString(name, "_") + ".json"
}

// Encode writes nb as indented JSON.
func Encode(w io.Writer, nb domain.Notebook) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nb); err != nil {
		return fmt.Errorf("encode notebook: %w", err)
	}
	return nil
}

// Marshal returns the indented JSON form of nb.
func Marshal(nb domain.Notebook) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, nb); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads and validates a notebook. Nothing is returned unless the
// whole document is valid.
func Decode(r io.Reader) (domain.Notebook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return domain.Notebook{}, fmt.Errorf("read notebook: %w", err)
	}
	return Unmarshal(data)
}

// Unmarshal validates data and decodes it into a notebook.
func Unmarshal(data []byte) (domain.Notebook, error) {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return domain.Notebook{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if err := Validate(tree); err != nil {
		return domain.Notebook{}, err
	}

	var nb domain.Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return domain.Notebook{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if nb.ID == "" {
		nb.ID = domain.NewID()
	}
	return nb, nil
}

// Validate checks the generic JSON tree of a notebook: non-empty string
// names at every level, at least one section and one page per section, and
// an elements array on every page.
func Validate(tree any) error {
	root, ok := tree.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: top level is not an object", ErrInvalidFormat)
	}
	if !nonEmptyString(root["name"]) {
		return fmt.Errorf("%w: notebook name missing", ErrInvalidFormat)
	}
	sections, ok := root["sections"].([]any)
	if !ok || len(sections) == 0 {
		return fmt.Errorf("%w: notebook has no sections", ErrInvalidFormat)
	}
	for i, s := range sections {
		section, ok := s.(map[string]any)
		if !ok || !nonEmptyString(section["name"]) {
			return fmt.Errorf("%w: section %d has no name", ErrInvalidFormat, i)
		}
		pages, ok := section["pages"].([]any)
		if !ok || len(pages) == 0 {
			return fmt.Errorf("%w: section %d has no pages", ErrInvalidFormat, i)
		}
		for j, p := range pages {
			page, ok := p.(map[string]any)
			if !ok || !nonEmptyString(page["name"]) {
				return fmt.Errorf("%w: page %d/%d has no name", ErrInvalidFormat, i, j)
			}
			if _, ok := page["elements"].([]any); !ok {
				return fmt.Errorf("%w: page %d/%d has no elements array", ErrInvalidFormat, i, j)
			}
		}
	}
	return nil
}

func nonEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}

// ReadFile loads a notebook from path.
func ReadFile(path string) (domain.Notebook, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Notebook{}, fmt.Errorf("open notebook: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile saves nb to path, replacing any existing file.
func WriteFile(path string, nb domain.Notebook) error {
	data, err := Marshal(nb)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write notebook: %w", err)
	}
	return nil
}
