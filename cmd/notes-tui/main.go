// Command notes-tui browses the stored notebook from a terminal: sections,
// pages and a text preview of each page's elements. It can add sections
// and pages; everything else is edited in the desktop app.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"canvasnotes/internal/config"
	"canvasnotes/internal/domain"
	"canvasnotes/internal/logger"
	"canvasnotes/internal/render"
	"canvasnotes/internal/secret"
	"canvasnotes/internal/service"
	"canvasnotes/internal/storage"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("213"))
	openStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	paneStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(0, 1)
)

const (
	previewLimit  = 60
	outlineMinCol = 28
)

// row is one line of the outline; page is -1 for a section header.
type row struct {
	section int
	page    int
}

type savedMsg struct{ err error }

type model struct {
	ctx     context.Context
	ws      *service.WorkspaceService
	outline service.Outline
	rows    []row
	cursor  int
	width   int
	height  int
	status  string
	err     error
}

func newModel(ctx context.Context, ws *service.WorkspaceService) model {
	m := model{ctx: ctx, ws: ws}
	m.refresh()
	for i, r := range m.rows {
		if r.section == m.outline.Section && r.page == m.outline.Page {
			m.cursor = i
		}
	}
	return m
}

func (m *model) refresh() {
	m.outline = m.ws.Outline()
	m.rows = m.rows[:0]
	for si, s := range m.outline.Sections {
		m.rows = append(m.rows, row{section: si, page: -1})
		for pi := range s.Pages {
			m.rows = append(m.rows, row{section: si, page: pi})
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}

func (m model) save() tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: m.ws.Save(m.ctx)}
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case savedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "saved"
		}
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		m.status = ""
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "enter", " ":
			r := m.rows[m.cursor]
			if r.page < 0 {
				return m, nil
			}
			if m.err = m.ws.SelectPage(r.section, r.page); m.err == nil {
				m.refresh()
				return m, m.save()
			}
		case "a":
			if m.err = m.ws.AddPage(m.rows[m.cursor].section); m.err == nil {
				m.refresh()
				return m, m.save()
			}
		case "A":
			if m.err = m.ws.AddSection(); m.err == nil {
				m.refresh()
				return m, m.save()
			}
		case "r":
			if m.err = m.ws.Sync(m.ctx); m.err == nil {
				m.refresh()
				m.status = "reloaded"
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	var left strings.Builder
	left.WriteString(titleStyle.Render(m.outline.Name) + "\n\n")
	for i, r := range m.rows {
		var line string
		if r.page < 0 {
			line = sectionStyle.Render("▸ " + m.outline.Sections[r.section].Name)
		} else {
			name := m.outline.Sections[r.section].Pages[r.page]
			if r.section == m.outline.Section && r.page == m.outline.Page {
				line = "    " + openStyle.Render("● "+name)
			} else {
				line = "    " + name
			}
		}
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		left.WriteString(line + "\n")
	}

	outlinePane := paneStyle.Width(max(outlineMinCol, m.width/3)).Render(strings.TrimRight(left.String(), "\n"))
	previewWidth := m.width - lipgloss.Width(outlinePane) - 4
	previewPane := paneStyle.Width(max(previewLimit/2, previewWidth)).Render(m.preview())

	body := lipgloss.JoinHorizontal(lipgloss.Top, outlinePane, previewPane)

	footer := dimStyle.Render("↑/↓ move • enter open • a add page • A add section • r reload • q quit")
	switch {
	case m.err != nil:
		footer = errorStyle.Render(m.err.Error())
	case m.status != "":
		footer = openStyle.Render(m.status)
	}
	return body + "\n" + footer
}

// preview lists the open page's elements top-most last, as they stack.
func (m model) preview() string {
	o := m.outline
	if len(o.Sections) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(o.Sections[o.Section].Pages[o.Page]) + "\n\n")

	elements := m.ws.Elements()
	if len(elements) == 0 {
		b.WriteString(dimStyle.Render("empty page"))
		return b.String()
	}
	for _, e := range elements {
		pos := dimStyle.Render(fmt.Sprintf("(%.0f, %.0f) %.0f×%.0f", e.X, e.Y, e.Width, e.Height))
		b.WriteString(fmt.Sprintf("%-6s %s  %s\n", e.Kind(), pos, describe(e)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func describe(e domain.Element) string {
	var s string
	switch p := e.Payload.(type) {
	case domain.Text:
		s = render.PlainText(p.Content)
	case domain.Math:
		s = p.Latex
	case domain.Shape:
		s = string(p.Form)
	case domain.Image:
		if w, h, err := render.ImageSize(p.Src); err == nil {
			s = fmt.Sprintf("%dx%d source", w, h)
		}
	}
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > previewLimit {
		s = string(r[:previewLimit]) + "…"
	}
	return s
}

func open(ctx context.Context) (storage.Store, *service.WorkspaceService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, nil, err
	}
	if err := cfg.ResolvePassword(secret.New()); err != nil {
		logger.Warn("database password not resolved", map[string]any{"error": err.Error()})
	}
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	ws := service.NewWorkspaceService(service.WorkspaceOptions{
		Store:        store,
		HistoryLimit: cfg.HistoryLimit,
	})
	if err := ws.Open(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, ws, nil
}

func main() {
	ctx := context.Background()

	// the alt screen owns the terminal
	logger.SetOutput(io.Discard)

	store, ws, err := open(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "notes-tui:", err)
		os.Exit(1)
	}
	defer store.Close()
	defer ws.Close(ctx)

	if _, err := tea.NewProgram(newModel(ctx, ws), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "notes-tui:", err)
		os.Exit(1)
	}
}
