package document

import (
	"fmt"
	"slices"

	"canvasnotes/internal/domain"
)

// Structural operations replace the current page, so each one clears the
// selection and reseeds history.

// NewNotebook discards the open notebook and starts an empty one.
func (d *Document) NewNotebook() {
	d.notebook = domain.NewNotebook(domain.NewNotebookName)
	d.reset(0, 0)
}

// Replace swaps in a whole notebook, e.g. after an import.
func (d *Document) Replace(nb domain.Notebook) error {
	if !usable(nb) {
		return ErrInvalidNotebook
	}
	d.notebook = nb.Clone()
	if d.notebook.ID == "" {
		d.notebook.ID = domain.NewID()
	}
	d.reset(0, 0)
	return nil
}

// AddSection appends "Section N" holding "Page 1" and opens it.
func (d *Document) AddSection() {
	n := len(d.notebook.Sections)
	d.notebook.Sections = append(d.notebook.Sections, domain.NewSection(domain.SectionName(n+1)))
	d.reset(n, 0)
}

// AddPage appends "Page N" to the given section and opens it.
func (d *Document) AddPage(section int) error {
	if section < 0 || section >= len(d.notebook.Sections) {
		return d.outOfRange("section", section)
	}
	s := &d.notebook.Sections[section]
	n := len(s.Pages)
	s.Pages = append(s.Pages, domain.NewPage(domain.PageName(n+1)))
	d.reset(section, n)
	return nil
}

// SelectPage opens page of section.
func (d *Document) SelectPage(section, page int) error {
	if section < 0 || section >= len(d.notebook.Sections) {
		return d.outOfRange("section", section)
	}
	if page < 0 || page >= len(d.notebook.Sections[section].Pages) {
		return d.outOfRange("page", page)
	}
	d.reset(section, page)
	return nil
}

// RenameItem renames the notebook (index 0), a section, or a page of the
// current section. Renaming leaves the current page and history alone.
func (d *Document) RenameItem(kind ItemKind, index int, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	switch kind {
	case ItemNotebook:
		if index != 0 {
			return d.outOfRange("notebook", index)
		}
		d.notebook.Name = name
	case ItemSection:
		if index < 0 || index >= len(d.notebook.Sections) {
			return d.outOfRange("section", index)
		}
		d.notebook.Sections[index].Name = name
	case ItemPage:
		pages := d.notebook.Sections[d.section].Pages
		if index < 0 || index >= len(pages) {
			return d.outOfRange("page", index)
		}
		pages[index].Name = name
	default:
		return fmt.Errorf("rename: unknown item kind %q", kind)
	}
	d.touch()
	return nil
}

// DeleteItem removes a section, or a page of the current section. The
// first remaining page becomes current. Removing the last page of a section
// or the last section creates a fresh default one in its place.
func (d *Document) DeleteItem(kind ItemKind, index int) error {
	switch kind {
	case ItemSection:
		if index < 0 || index >= len(d.notebook.Sections) {
			return d.outOfRange("section", index)
		}
		d.notebook.Sections = slices.Delete(d.notebook.Sections, index, index+1)
		if len(d.notebook.Sections) == 0 {
			d.AddSection()
			return nil
		}
		d.reset(0, 0)
	case ItemPage:
		s := &d.notebook.Sections[d.section]
		if index < 0 || index >= len(s.Pages) {
			return d.outOfRange("page", index)
		}
		s.Pages = slices.Delete(s.Pages, index, index+1)
		if len(s.Pages) == 0 {
			return d.AddPage(d.section)
		}
		d.reset(d.section, 0)
	default:
		return fmt.Errorf("delete: unknown item kind %q", kind)
	}
	return nil
}
