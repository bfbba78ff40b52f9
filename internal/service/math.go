package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"canvasnotes/internal/domain"
	"canvasnotes/internal/logger"
	"canvasnotes/internal/mathrender"
)

const settingRecentSymbols = "math_recent_symbols"

// SetMath replaces the formula of a math element and caches its markup.
// A formula that does not typeset is kept; its markup is the error marker.
func (s *WorkspaceService) SetMath(index int, latex string) error {
	html := mathrender.Markup(s.math, latex)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.UpdateElement(index, domain.Patch{Latex: &latex, HTML: &html})
}

// MathPreview typesets latex without touching the document.
func (s *WorkspaceService) MathPreview(latex string) string {
	return mathrender.Markup(s.math, latex)
}

func (s *WorkspaceService) Palette() []mathrender.PaletteTab {
	return mathrender.Palette
}

// RecentSymbols lists recently inserted palette symbols, newest first.
func (s *WorkspaceService) RecentSymbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.recent...)
}

// UseSymbol records sym as just inserted and persists the list.
func (s *WorkspaceService) UseSymbol(ctx context.Context, sym string) error {
	s.mu.Lock()
	s.recent = mathrender.PushRecent(s.recent, sym)
	recent := append([]string(nil), s.recent...)
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	data, err := json.Marshal(recent)
	if err != nil {
		return err
	}
	if err := s.store.SetSetting(ctx, settingRecentSymbols, string(data)); err != nil {
		return fmt.Errorf("save recent symbols: %w", err)
	}
	return nil
}

func (s *WorkspaceService) loadRecent(ctx context.Context) error {
	v, err := s.store.GetSetting(ctx, settingRecentSymbols)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var recent []string
	if err := json.Unmarshal([]byte(v), &recent); err != nil {
		logger.Warn("discarding malformed recent symbols", map[string]any{"value": v})
		return nil
	}
	if len(recent) > mathrender.RecentLimit {
		recent = recent[:mathrender.RecentLimit]
	}
	s.mu.Lock()
	s.recent = recent
	s.mu.Unlock()
	return nil
}
