package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditStatus is an audit entry's terminal outcome.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditError   AuditStatus = "error"
	AuditTimeout AuditStatus = "timeout"
)

// AuditEntry is a single append-only audit record. The schema admits no
// free-text fields other than already-sanitized identifiers — enforced
// here at the type layer, not by runtime scrubbing: there is simply nowhere
// to put clinical text, API payloads, or user identifiers beyond an opaque
// workflow/connector name.
type AuditEntry struct {
	Timestamp     time.Time   `json:"timestamp"`
	WorkflowID    string      `json:"workflow_id"`
	Connector     string      `json:"connector,omitempty"`
	Status        AuditStatus `json:"status"`
	ErrorCode     string      `json:"error_code,omitempty"`
	DurationMS    int64       `json:"duration_ms,omitempty"`
}

// AuditLog is an internally synchronized, append-only audit writer backed
// by a JSON-lines file. Writers do not block readers of the in-memory
// recent-entries ring on file I/O: the file write happens outside the lock,
// which readers share with writers only for the in-memory append.
type AuditLog struct {
	mu      sync.Mutex
	file    *os.File
	recent  []AuditEntry
	maxKept int
}

const defaultAuditRingSize = 500

// NewAuditLog opens (creating if absent) the append-only log at path.
func NewAuditLog(path string) (*AuditLog, error) {
	if path == "" {
		path = filepath.Join("logs", "audit.log")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}

	log := &AuditLog{file: f, maxKept: defaultAuditRingSize}
	if err := log.loadRecent(path); err != nil {
		return nil, err
	}
	return log, nil
}

func (a *AuditLog) loadRecent(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reopening audit log for replay: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var entry AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		a.recent = append(a.recent, entry)
		if len(a.recent) > a.maxKept {
			a.recent = a.recent[1:]
		}
	}
	return nil
}

// Record appends entry to the log, stamping its timestamp if unset.
func (a *AuditLog) Record(entry AuditEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err == nil {
		a.file.Write(append(data, '\n'))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.recent = append(a.recent, entry)
	if len(a.recent) > a.maxKept {
		a.recent = a.recent[1:]
	}
}

// Recent returns the last n entries, most recent last.
func (a *AuditLog) Recent(n int) []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n <= 0 || n > len(a.recent) {
		n = len(a.recent)
	}
	return append([]AuditEntry(nil), a.recent[len(a.recent)-n:]...)
}

// RotationStatus reports whether the audit log is healthy, surfaced under
// the "audit_log" key of /api/health's checks.
type RotationStatus struct {
	Enabled bool   `json:"enabled"`
	Status  string `json:"status"`
}

// Status reports the audit log's health: whether it holds an open backing
// file. The file is not probed for writability.
func (a *AuditLog) Status() RotationStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file == nil {
		return RotationStatus{Enabled: false, Status: "closed"}
	}
	return RotationStatus{Enabled: true, Status: "ok"}
}
