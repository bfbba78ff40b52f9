package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canvasnotes/internal/geometry"
)

var ErrNotFound = errors.New("not found")

const (
	DefaultNotebookName = "My Notebook"
	NewNotebookName     = "New Notebook"
)

type Notebook struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Sections []Section `json:"sections"`
}

type Section struct {
	Name  string `json:"name"`
	Pages []Page `json:"pages"`
}

// Page holds its elements in z-order, back to front. Ink is the freehand
// layer under the elements; it is saved with the page but not snapshotted
// by undo history.
type Page struct {
	Name     string    `json:"name"`
	Elements []Element `json:"elements"`
	Ink      []Stroke  `json:"ink,omitempty"`
}

type StrokeMode string

const (
	StrokeDraw  StrokeMode = "draw"
	StrokeErase StrokeMode = "erase"
)

// Stroke is one pen or eraser gesture in canvas coordinates.
type Stroke struct {
	Mode   StrokeMode       `json:"mode"`
	Color  string           `json:"color,omitempty"`
	Width  float64          `json:"width"`
	Points []geometry.Point `json:"points"`
}

// SectionName and PageName produce the default names for the n-th (1-based) item.
func SectionName(n int) string { return fmt.Sprintf("Section %d", n) }
func PageName(n int) string { return fmt.Sprintf("Page %d", n) }

// NewPage returns an empty page.
func NewPage(name string) Page {
	return Page{Name: name, Elements: []Element{}}
}

// NewSection returns a section holding a single empty "Page 1".
func NewSection(name string) Section {
	return Section{Name: name, Pages: []Page{NewPage(PageName(1))}}
}

// NewNotebook returns a notebook with one section and one page.
func NewNotebook(name string) Notebook {
	return Notebook{
		ID:       NewID(),
		Name:     name,
		Sections: []Section{NewSection(SectionName(1))},
	}
}

// Clone deep-copies the notebook.
func (n Notebook) Clone() Notebook {
	out := Notebook{ID: n.ID, Name: n.Name, Sections: make([]Section, len(n.Sections))}
	for i, s := range n.Sections {
		out.Sections[i] = s.Clone()
	}
	return out
}

func (s Section) Clone() Section {
	out := Section{Name: s.Name, Pages: make([]Page, len(s.Pages))}
	for i, p := range s.Pages {
		out.Pages[i] = p.Clone()
	}
	return out
}

func (p Page) Clone() Page {
	out := Page{Name: p.Name, Elements: CloneElements(p.Elements)}
	if p.Ink != nil {
		out.Ink = make([]Stroke, len(p.Ink))
		for i, s := range p.Ink {
			s.Points = append([]geometry.Point(nil), s.Points...)
			out.Ink[i] = s
		}
	}
	return out
}

// NotebookInfo is the listing row for a stored notebook. Revision grows by
// one on every save, whichever process wrote it.
type NotebookInfo struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Revision  int64     `json:"revision" bson:"revision"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// NotebookStore persists whole notebooks. Implementations exist for SQL
// databases and MongoDB.
type NotebookStore interface {
	// SaveNotebook writes nb and returns the row as stored, revision included,
	// read in the same operation as the write.
	SaveNotebook(ctx context.Context, nb *Notebook) (NotebookInfo, error)
	GetNotebook(ctx context.Context, id string) (*Notebook, error)
	StatNotebook(ctx context.Context, id string) (NotebookInfo, error)
	LatestNotebook(ctx context.Context) (*Notebook, error)
	ListNotebooks(ctx context.Context) ([]NotebookInfo, error)
	DeleteNotebook(ctx context.Context, id string) error
	Close() error
}
