// Package desktop abstracts the UI-automation primitives the visual
// interpreter and the agent dispatcher both need: screen capture, OCR,
// clipboard, and synthetic input. The source couples these through a
// single platform library; here they are a narrow capability interface so
// tests can substitute a recording fake without touching real hardware.
package desktop

import "image"

// Rect is a screen region in primary-display pixel coordinates.
type Rect struct {
	X, Y, Width, Height int
}

// IO is the UI-automation capability surface. Implementations must be safe
// to call from a single goroutine at a time; callers serialize access by
// running one workflow at a time.
type IO interface {
	// Screenshot captures r from the primary display.
	Screenshot(r Rect) (image.Image, error)
	// OCR extracts text from img.
	OCR(img image.Image) (string, error)
	// ReadClipboard returns the current clipboard text.
	ReadClipboard() (string, error)
	// WriteClipboard sets the clipboard text.
	WriteClipboard(s string) error
	// Click performs a left mouse click at (x, y).
	Click(x, y int) error
	// TypeText emits s as keystrokes, pausing perCharDelay between each.
	TypeText(s string, perCharDelay int) error
	// KeyCombo emits a chord, e.g. "ctrl+a" or "tab".
	KeyCombo(seq string) error
	// ReleaseModifiers releases ctrl, alt, and shift if held, regardless of
	// prior state. Always invoked after a visual-workflow execution.
	ReleaseModifiers() error
	// ActiveWindowTitle returns the foreground window's title, or "" where
	// the platform offers no such API.
	ActiveWindowTitle() (string, error)
	// CursorPosition returns the mouse cursor's current screen coordinates,
	// used by the coordinate-picker flow to report where the user clicked.
	CursorPosition() (x, y int, err error)
}
