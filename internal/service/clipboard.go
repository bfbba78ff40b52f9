package service

import "github.com/atotto/clipboard"

// Clipboard is the system clipboard. Elements travel through it as JSON
// text so they can be pasted into another notebook or window.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard uses xclip/xsel/wl-clipboard, pbcopy or the Windows API.
type SystemClipboard struct{}

func (SystemClipboard) ReadAll() (string, error) { return clipboard.ReadAll() }
func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// MemoryClipboard is a process-local clipboard for headless use and tests.
type MemoryClipboard struct{ Text string }

func (m *MemoryClipboard) ReadAll() (string, error) { return m.Text, nil }
func (m *MemoryClipboard) WriteAll(text string) error {
	m.Text = text
	return nil
}
