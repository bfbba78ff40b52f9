package app

import "canvasnotes/internal/mathrender"

// ============================================================
// Math
// ============================================================

// SetMath stores a new formula on a math element and typesets it.
func (a *App) SetMath(index int, latex string) error {
	return a.ws.SetMath(index, latex)
}

// MathPreview typesets latex for the editor's live preview.
func (a *App) MathPreview(latex string) string {
	return a.ws.MathPreview(latex)
}

func (a *App) MathPalette() []mathrender.PaletteTab {
	return a.ws.Palette()
}

func (a *App) RecentSymbols() []string {
	return a.ws.RecentSymbols()
}

func (a *App) UseSymbol(sym string) error {
	return a.ws.UseSymbol(a.ctx, sym)
}
