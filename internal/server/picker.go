package server

import (
	"sync"

	"github.com/deskbridge/deskbridge/internal/workflow"
	"github.com/google/uuid"
)

// PickerStatus is a picker session's lifecycle state.
type PickerStatus string

const (
	PickerPending   PickerStatus = "pending"
	PickerCompleted PickerStatus = "completed"
)

// PickerSession is one dashboard-initiated coordinate pick.
type PickerSession struct {
	SessionID   string        `json:"session_id"`
	FieldName   string        `json:"field_name"`
	Status      PickerStatus  `json:"status"`
	Coordinates *workflow.Point `json:"coordinates,omitempty"`
}

// PickerCoordinator implements the two-party picker choreography: the
// dashboard activates a session, the agent reports a click, and exactly one
// session is ever "current" — a single global pointer the agent's next
// report always targets. Guarded by one mutex; holds are brief.
type PickerCoordinator struct {
	mu       sync.Mutex
	sessions map[string]*PickerSession
	current  *PickerSession
}

// NewPickerCoordinator returns an empty, in-memory coordinator.
func NewPickerCoordinator() *PickerCoordinator {
	return &PickerCoordinator{sessions: make(map[string]*PickerSession)}
}

// Activate begins a session, becoming the new "current" target. A second
// activation before the first completes moves the pointer, abandoning the
// first — the dashboard drives the choreography and tolerates this.
// sessionID is normally caller-supplied (the dashboard mints its own id to
// correlate with its UI state); if empty, one is minted here instead.
func (p *PickerCoordinator) Activate(sessionID, fieldName string) *PickerSession {
	p.mu.Lock()
	defer p.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	session := &PickerSession{SessionID: sessionID, FieldName: fieldName, Status: PickerPending}
	p.sessions[sessionID] = session
	p.current = session
	return session
}

// ReportCoordinates binds (x, y) to whichever session is current.
// Returns false if no session is active.
func (p *PickerCoordinator) ReportCoordinates(x, y int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return false
	}
	p.current.Coordinates = &workflow.Point{X: x, Y: y}
	p.current.Status = PickerCompleted
	return true
}

// Status returns a session's current state.
func (p *PickerCoordinator) Status(sessionID string) (*PickerSession, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[sessionID]
	return s, ok
}
