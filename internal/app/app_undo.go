package app

// ============================================================
// History & Clipboard
// ============================================================

func (a *App) Undo() bool {
	return a.ws.Undo()
}

func (a *App) Redo() bool {
	return a.ws.Redo()
}

func (a *App) Copy() error {
	return a.ws.Copy()
}

func (a *App) Cut() error {
	return a.ws.Cut()
}

func (a *App) Paste() error {
	return a.ws.Paste()
}
