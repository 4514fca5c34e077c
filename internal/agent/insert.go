package agent

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deskbridge/deskbridge/internal/desktop"
	"github.com/deskbridge/deskbridge/internal/workflow"
)

// perCharDelayMS is the inter-keystroke delay used by the "type" insertion
// method.
const perCharDelayMS = 10

// ApplyInsertion performs one insertion instruction's UI sequence: optional
// pre-click, selection clear on replace, paste-or-type insertion, then an
// optional navigation key sequence.
func ApplyInsertion(io desktop.IO, ins workflow.Insertion) error {
	if ins.ClickBefore != nil {
		if err := io.Click(ins.ClickBefore.X, ins.ClickBefore.Y); err != nil {
			return fmt.Errorf("pre-click: %w", err)
		}
	}

	switch ins.Mode {
	case workflow.ModeReplace:
		if err := io.KeyCombo("ctrl+a"); err != nil {
			return fmt.Errorf("selecting all: %w", err)
		}
		if err := io.KeyCombo("delete"); err != nil {
			return fmt.Errorf("deleting selection: %w", err)
		}
		if err := insertContent(io, ins.Content, ins.InsertMethod); err != nil {
			return err
		}
	case workflow.ModeAppend:
		if err := io.KeyCombo("end"); err != nil {
			return fmt.Errorf("moving caret to end: %w", err)
		}
		if err := insertContent(io, "\n"+ins.Content, ins.InsertMethod); err != nil {
			return err
		}
	case workflow.ModePrepend:
		if err := io.KeyCombo("home"); err != nil {
			return fmt.Errorf("moving caret to start: %w", err)
		}
		if err := insertContent(io, ins.Content+"\n", ins.InsertMethod); err != nil {
			return err
		}
	default:
		if err := insertContent(io, ins.Content, ins.InsertMethod); err != nil {
			return err
		}
	}

	if ins.Navigation != "" {
		if err := RunNavigation(io, ins.Navigation); err != nil {
			return fmt.Errorf("navigation %q: %w", ins.Navigation, err)
		}
	}

	return nil
}

// insertContent inserts content either by pasting (copy to clipboard, emit
// the paste shortcut, restore the prior clipboard) or by typing it
// character by character.
func insertContent(io desktop.IO, content, method string) error {
	switch method {
	case "", "paste":
		prior, _ := io.ReadClipboard()
		if err := io.WriteClipboard(content); err != nil {
			return fmt.Errorf("writing clipboard: %w", err)
		}
		if err := io.KeyCombo("ctrl+v"); err != nil {
			return fmt.Errorf("emitting paste: %w", err)
		}
		_ = io.WriteClipboard(prior)
		return nil
	case "type":
		return io.TypeText(content, perCharDelayMS)
	default:
		return fmt.Errorf("unknown insert method %q", method)
	}
}

// RunNavigation executes a space-separated navigation grammar: "tab_N"
// (press tab N times), "enter", or "down_N" (press down-arrow N times).
func RunNavigation(io desktop.IO, grammar string) error {
	for _, token := range strings.Fields(grammar) {
		if err := runNavigationToken(io, token); err != nil {
			return err
		}
	}
	return nil
}

func runNavigationToken(io desktop.IO, token string) error {
	switch {
	case token == "enter":
		return io.KeyCombo("enter")
	case strings.HasPrefix(token, "tab_"):
		return repeatKey(io, "tab", token[len("tab_"):])
	case strings.HasPrefix(token, "down_"):
		return repeatKey(io, "down", token[len("down_"):])
	default:
		return fmt.Errorf("unknown navigation token %q", token)
	}
}

func repeatKey(io desktop.IO, key, countStr string) error {
	n, err := strconv.Atoi(countStr)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid repeat count in %q", key+"_"+countStr)
	}
	for i := 0; i < n; i++ {
		if err := io.KeyCombo(key); err != nil {
			return err
		}
	}
	return nil
}
