package agent

import (
	"fmt"
	"strings"
	"sync"

	"golang.design/x/hotkey"
)

// GoDesignHook is the production HotkeyHook, backed by golang-design/x/hotkey.
// Each registered combo gets its own OS-level hook and listener goroutine,
// so a key press dispatches its handler without blocking the others.
type GoDesignHook struct {
	mu    sync.Mutex
	hooks []*hotkey.Hotkey
	stop  chan struct{}
}

// NewGoDesignHook returns an empty hook set.
func NewGoDesignHook() *GoDesignHook {
	return &GoDesignHook{stop: make(chan struct{})}
}

var modifierNames = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"alt":   hotkey.ModOption,
	"shift": hotkey.ModShift,
	"cmd":   hotkey.ModCtrl,
	"win":   hotkey.ModCtrl,
}

var keyNames = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
}

// parseCombo splits a normalized combo string ("CTRL+ALT+V") into
// modifiers and a terminal key.
func parseCombo(combo string) ([]hotkey.Modifier, hotkey.Key, error) {
	parts := strings.Split(strings.ToLower(combo), "+")
	if len(parts) < 2 {
		return nil, 0, fmt.Errorf("hotkey combo %q needs at least one modifier and a key", combo)
	}

	mods := make([]hotkey.Modifier, 0, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		m, ok := modifierNames[p]
		if !ok {
			return nil, 0, fmt.Errorf("unknown modifier %q in combo %q", p, combo)
		}
		mods = append(mods, m)
	}

	key, ok := keyNames[parts[len(parts)-1]]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported key %q in combo %q", parts[len(parts)-1], combo)
	}
	return mods, key, nil
}

func (h *GoDesignHook) Register(combo string, handler func()) error {
	mods, key, err := parseCombo(combo)
	if err != nil {
		return err
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("registering hotkey %q: %w", combo, err)
	}

	h.mu.Lock()
	h.hooks = append(h.hooks, hk)
	h.mu.Unlock()

	go func() {
		for {
			select {
			case <-hk.Keydown():
				handler()
			case <-h.stop:
				return
			}
		}
	}()

	return nil
}

func (h *GoDesignHook) RunUntilStop() error {
	<-h.stop
	return nil
}

func (h *GoDesignHook) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, hk := range h.hooks {
		hk.Unregister()
	}
	close(h.stop)
}
