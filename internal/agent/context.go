package agent

import (
	"time"

	"github.com/deskbridge/deskbridge/internal/desktop"
)

// Context is the per-hotkey-press snapshot handed to the server's trigger
// endpoint: hotkey combo, selected text, clipboard, active window title,
// user id, and capture time.
type Context struct {
	Hotkey       string    `json:"hotkey"`
	SelectedText string    `json:"selected_text"`
	Clipboard    string    `json:"clipboard"`
	WindowTitle  string    `json:"window_title"`
	UserID       string    `json:"user_id"`
	Timestamp    time.Time `json:"timestamp"`
}

// CaptureOptions controls whether the clipboard is backed up before the
// capture reads it and restored afterward, preserving the user's clipboard.
type CaptureOptions struct {
	BackupClipboard bool
	UserID          string
}

// Capture assembles a Context for hotkey. The "selected text" is read from
// the clipboard: a synthetic copy is implied by the user having
// pre-selected and copied before pressing the hotkey.
func Capture(io desktop.IO, hotkey string, opts CaptureOptions) (Context, error) {
	var backup string
	var hadBackup bool

	if opts.BackupClipboard {
		if v, err := io.ReadClipboard(); err == nil {
			backup = v
			hadBackup = true
		}
	}

	clip, err := io.ReadClipboard()
	if err != nil {
		clip = ""
	}

	title, err := io.ActiveWindowTitle()
	if err != nil {
		title = ""
	}

	ctx := Context{
		Hotkey:       hotkey,
		SelectedText: clip,
		Clipboard:    clip,
		WindowTitle:  title,
		UserID:       opts.UserID,
		Timestamp:    time.Now(),
	}

	if hadBackup {
		_ = io.WriteClipboard(backup)
	}

	return ctx, nil
}
