package agent

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/deskbridge/deskbridge/internal/desktop"
	"github.com/deskbridge/deskbridge/internal/workflow"
)

// State is the agent root's lifecycle state (spec §4.4's state machine:
// Initializing -> Ready <-> Handling/Picking -> ShuttingDown).
type State string

const (
	StateInitializing State = "initializing"
	StateReady        State = "ready"
	StateHandling     State = "handling"
	StatePicking      State = "picking"
	StateShuttingDown State = "shutting_down"
)

// Dispatcher is the agent root: it holds the desktop IO, the declarative,
// visual and picker hotkey hooks, the server client, the callback server
// address and the user id, and runs the lifecycle state machine.
type Dispatcher struct {
	Desktop      desktop.IO
	Declarative  HotkeyHook
	Visual       HotkeyHook
	Picker       HotkeyHook
	Server       *ServerClient
	CallbackAddr string
	UserID       string
	Logger       *slog.Logger

	state atomic.Value // State

	mu      sync.Mutex
	picking bool
}

// NewDispatcher builds a Dispatcher in the Initializing state.
func NewDispatcher(d desktop.IO, server *ServerClient, callbackAddr, userID string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	disp := &Dispatcher{
		Desktop:      d,
		Server:       server,
		CallbackAddr: callbackAddr,
		UserID:       userID,
		Logger:       logger,
	}
	disp.state.Store(StateInitializing)
	return disp
}

// State returns the dispatcher's current lifecycle state.
func (d *Dispatcher) State() State { return d.state.Load().(State) }

// Run waits for the server to become healthy, starts the local callback
// server, registers all three hotkey listeners, and blocks until ctx is
// cancelled.
func (d *Dispatcher) Run(ctx context.Context, declarativeHotkeys map[string]func(), visualHotkeys map[string]func(), pickerCombo string) error {
	if err := d.Server.WaitHealthy(ctx); err != nil {
		return err
	}
	d.state.Store(StateReady)

	callback := &http.Server{Addr: d.CallbackAddr, Handler: NewCallbackServer(d.Desktop)}
	go func() {
		d.Logger.Info("agent callback server listening", slog.String("addr", d.CallbackAddr))
		if err := callback.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			d.Logger.Error("agent callback server error", slog.Any("error", err))
		}
	}()

	for combo, handler := range declarativeHotkeys {
		if err := d.Declarative.Register(combo, d.wrapHandling(handler)); err != nil {
			return err
		}
	}
	for combo, handler := range visualHotkeys {
		if err := d.Visual.Register(combo, d.wrapHandling(handler)); err != nil {
			return err
		}
	}
	if pickerCombo != "" {
		if err := d.Picker.Register(pickerCombo, d.wrapPicking); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		d.state.Store(StateShuttingDown)
		d.Declarative.Stop()
		d.Visual.Stop()
		d.Picker.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = callback.Shutdown(shutdownCtx)
	}()

	if err := d.Declarative.RunUntilStop(); err != nil {
		return err
	}
	return nil
}

// wrapHandling runs handler on a fresh goroutine so the OS-global hotkey
// hook is never blocked, transitioning Ready -> Handling -> Ready around
// the call.
func (d *Dispatcher) wrapHandling(handler func()) func() {
	return func() {
		go func() {
			d.state.Store(StateHandling)
			defer d.state.Store(StateReady)
			handler()
		}()
	}
}

// wrapPicking fires when the user presses the picker combo over the field
// they want to bind: the dashboard has already activated a session, so the
// agent's only job is to read the cursor's current position and report it,
// completing whichever session the server holds as "current".
func (d *Dispatcher) wrapPicking() {
	go func() {
		d.mu.Lock()
		d.picking = true
		d.mu.Unlock()

		d.state.Store(StatePicking)
		defer func() {
			d.mu.Lock()
			d.picking = false
			d.mu.Unlock()
			d.state.Store(StateReady)
		}()

		x, y, err := d.Desktop.CursorPosition()
		if err != nil {
			d.Logger.Error("reading cursor position for picker failed", slog.Any("error", err))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.Server.ReportPickerCoordinates(ctx, x, y); err != nil {
			d.Logger.Error("reporting picker coordinates failed", slog.Any("error", err))
			return
		}
		d.Logger.Info("picker coordinates reported", slog.Int("x", x), slog.Int("y", y))
	}()
}

// HandleDeclarative captures context for hotkey, calls the server's
// trigger endpoint, and applies every returned insertion in order.
func (d *Dispatcher) HandleDeclarative(ctx context.Context, hotkey string) {
	capturedCtx, err := Capture(d.Desktop, hotkey, CaptureOptions{BackupClipboard: true, UserID: d.UserID})
	if err != nil {
		d.Logger.Error("context capture failed", slog.Any("error", err))
		return
	}

	resp, err := d.Server.Trigger(ctx, hotkey, capturedCtx)
	if err != nil {
		d.Logger.Error("trigger call failed", slog.Any("error", err))
		return
	}
	if resp.Status != "success" {
		d.Logger.Error("workflow terminal error", slog.String("message", resp.ErrorMessage))
		return
	}

	for _, ins := range resp.Insertions {
		time.Sleep(50 * time.Millisecond) // pause between insertions
		if err := applyTriggerInsertion(d.Desktop, ins); err != nil {
			d.Logger.Error("insertion failed", slog.String("target_field", ins.TargetField), slog.Any("error", err))
			return
		}
	}
}

// HandleVisual asks the server to execute the visual workflow identified by
// id. The server drives the steps itself (it owns the desktop IO the
// interpreter runs against); the agent only logs the terminal outcome.
func (d *Dispatcher) HandleVisual(ctx context.Context, id string) {
	resp, err := d.Server.ExecuteVisual(ctx, id)
	if err != nil {
		d.Logger.Error("visual workflow execute call failed", slog.String("workflow_id", id), slog.Any("error", err))
		return
	}
	if resp.Status != "success" {
		d.Logger.Error("visual workflow terminal error",
			slog.String("workflow_id", id),
			slog.String("failed_step_id", resp.FailedStepID),
			slog.String("error_code", resp.ErrorCode))
		return
	}
	d.Logger.Info("visual workflow completed", slog.String("workflow_id", id))
}

func applyTriggerInsertion(io desktop.IO, ins TriggerInsertion) error {
	wi := workflow.Insertion{
		TargetField:  ins.TargetField,
		Content:      ins.Content,
		Mode:         workflow.InsertionMode(ins.Mode),
		Navigation:   ins.Navigation,
		InsertMethod: ins.InsertMethod,
	}
	if ins.ClickBefore != nil {
		wi.ClickBefore = &workflow.Point{X: ins.ClickBefore.X, Y: ins.ClickBefore.Y}
	}
	return ApplyInsertion(io, wi)
}
