package agent

// HotkeyHook abstracts the OS-level global hotkey API. Global hotkey hooks
// vary per platform; the dispatcher's scheduler does not, so platform
// implementations live behind this narrow interface.
type HotkeyHook interface {
	// Register binds combo (e.g. "ctrl+alt+v") to handler. Registering a
	// combo that is already bound does not replace the earlier handler:
	// GoDesignHook registers a second OS hook for it.
	Register(combo string, handler func()) error
	// RunUntilStop blocks, dispatching registered handlers as hotkeys fire,
	// until Stop is called.
	RunUntilStop() error
	// Stop unblocks a running RunUntilStop and releases OS resources.
	Stop()
}
