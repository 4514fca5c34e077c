package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/deskbridge/deskbridge/internal/workflow"
)

// VisualStore is the CRUD-managed visual workflow registry, persisted to a
// single JSON file rewritten atomically under a lock (read-modify-write is
// not atomic without one).
type VisualStore struct {
	mu      sync.Mutex
	path    string
	byID    map[string]*workflow.VisualWorkflow
}

// NewVisualStore loads path, creating an empty store if the file is absent.
func NewVisualStore(path string) (*VisualStore, error) {
	s := &VisualStore{path: path, byID: make(map[string]*workflow.VisualWorkflow)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading visual workflow store: %w", err)
	}

	var workflows []*workflow.VisualWorkflow
	if err := json.Unmarshal(data, &workflows); err != nil {
		return nil, fmt.Errorf("parsing visual workflow store: %w", err)
	}
	for _, wf := range workflows {
		s.byID[wf.ID] = wf
	}
	return s, nil
}

// Count returns the number of stored visual workflows.
func (s *VisualStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// List returns every stored visual workflow.
func (s *VisualStore) List() []*workflow.VisualWorkflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*workflow.VisualWorkflow, 0, len(s.byID))
	for _, wf := range s.byID {
		out = append(out, wf)
	}
	return out
}

// Get returns one stored workflow by id.
func (s *VisualStore) Get(id string) (*workflow.VisualWorkflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.byID[id]
	return wf, ok
}

// Create adds a new workflow, failing if id is already taken.
func (s *VisualStore) Create(wf *workflow.VisualWorkflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[wf.ID]; exists {
		return fmt.Errorf("visual workflow %q already exists", wf.ID)
	}
	wf.UpdatedAt = time.Now()
	s.byID[wf.ID] = wf
	return s.persistLocked()
}

// Update replaces an existing workflow's contents, preserving its id.
func (s *VisualStore) Update(id string, wf *workflow.VisualWorkflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; !exists {
		return fmt.Errorf("visual workflow %q not found", id)
	}
	wf.ID = id
	wf.UpdatedAt = time.Now()
	s.byID[id] = wf
	return s.persistLocked()
}

// Delete removes a workflow by id.
func (s *VisualStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; !exists {
		return fmt.Errorf("visual workflow %q not found", id)
	}
	delete(s.byID, id)
	return s.persistLocked()
}

// persistLocked rewrites the backing file atomically: write to a temp file
// in the same directory, then rename over the target.
func (s *VisualStore) persistLocked() error {
	workflows := make([]*workflow.VisualWorkflow, 0, len(s.byID))
	for _, wf := range s.byID {
		workflows = append(workflows, wf)
	}

	data, err := json.MarshalIndent(workflows, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding visual workflow store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating visual workflow store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".visual-workflows-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file into place: %w", err)
	}
	return nil
}
