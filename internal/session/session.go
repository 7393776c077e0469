// Package session holds one workspace's parts and settings behind guarded
// mutation methods. Every read returns a deep copy, and every change can be
// undone.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/marcenapp/internal/engine"
	"github.com/piwi3910/marcenapp/internal/model"
)

var (
	ErrPartNotFound  = errors.New("part not found")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// State is an immutable view of a workspace. Result is nil until the current
// parts and settings have been nested.
type State struct {
	Name      string                `json:"name"`
	Client    string                `json:"client,omitempty"`
	Parts     []model.Part          `json:"parts"`
	Settings  model.NestingSettings `json:"settings"`
	Result    *model.NestingResult  `json:"result,omitempty"`
	Label     string                `json:"label,omitempty"` // Change that produced this state
	UpdatedAt time.Time             `json:"updated_at"`
}

// Project converts the state into a saveable project.
func (s State) Project() model.Project {
	return model.Project{
		Name:     s.Name,
		Client:   s.Client,
		Parts:    s.Parts,
		Settings: s.Settings,
		Result:   s.Result,
	}
}

// Session is the single owner of one workspace's state.
type Session struct {
	id      string
	mu      sync.RWMutex
	state   State
	rev     uint64 // Bumped on every change of state
	history *History
}

// New starts a session from a project. The project is copied.
func New(p model.Project) *Session {
	return &Session{
		id: uuid.NewString(),
		state: State{
			Name:      p.Name,
			Client:    p.Client,
			Parts:     copyParts(p.Parts),
			Settings:  copySettings(p.Settings),
			Result:    copyResult(p.Result),
			UpdatedAt: time.Now().UTC(),
		},
		history: NewHistory(defaultMaxDepth),
	}
}

func (s *Session) ID() string { return s.id }

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanRedo()
}

// History lists the labels of the states Undo can return to, oldest first.
func (s *Session) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Labels()
}

// AddPart validates p, assigns an ID when it has none and appends it.
func (s *Session) AddPart(p model.Part) (State, error) {
	if err := engine.ValidatePart(p); err != nil {
		return State{}, err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()[:8]
	}
	return s.mutate("Add "+p.Name, func(st *State) error {
		st.Parts = append(st.Parts, p)
		return nil
	})
}

// UpdatePart replaces the part with the given ID, keeping the ID.
func (s *Session) UpdatePart(id string, p model.Part) (State, error) {
	if err := engine.ValidatePart(p); err != nil {
		return State{}, err
	}
	p.ID = id
	return s.mutate("Edit "+p.Name, func(st *State) error {
		i := indexOf(st.Parts, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrPartNotFound, id)
		}
		st.Parts[i] = p
		return nil
	})
}

func (s *Session) RemovePart(id string) (State, error) {
	return s.mutate("Remove part", func(st *State) error {
		i := indexOf(st.Parts, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrPartNotFound, id)
		}
		st.Parts = append(st.Parts[:i], st.Parts[i+1:]...)
		return nil
	})
}

// ReplaceParts swaps the whole part list, as after an import or applying a template.
func (s *Session) ReplaceParts(parts []model.Part, label string) (State, error) {
	for i, p := range parts {
		if err := engine.ValidatePart(p); err != nil {
			return State{}, fmt.Errorf("part %d: %w", i+1, err)
		}
	}
	return s.mutate(label, func(st *State) error {
		st.Parts = copyParts(parts)
		return nil
	})
}

func (s *Session) SetSettings(settings model.NestingSettings) (State, error) {
	return s.mutate("Change settings", func(st *State) error {
		st.Settings = copySettings(settings)
		return nil
	})
}

// Undo restores the state before the last change.
func (s *Session) Undo() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.history.Undo(s.state)
	if !ok {
		return State{}, ErrNothingToUndo
	}
	s.state = prev
	s.rev++
	return s.state.clone(), nil
}

func (s *Session) Redo() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.history.Redo(s.state)
	if !ok {
		return State{}, ErrNothingToRedo
	}
	s.state = next
	s.rev++
	return s.state.clone(), nil
}

// Nest packs the current parts and stores the result on the state. A result
// already computed for the current state is returned as is. Nesting is not
// an undoable change.
func (s *Session) Nest(ctx context.Context) (model.NestingResult, error) {
	s.mu.RLock()
	snap, rev := s.state.clone(), s.rev
	s.mu.RUnlock()
	if snap.Result != nil {
		return *snap.Result, nil
	}
	if err := ctx.Err(); err != nil {
		return model.NestingResult{}, err
	}

	result, err := engine.New(snap.Settings).Compute(snap.Parts)
	if err != nil {
		return model.NestingResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Only store the result if nothing changed while packing.
	if s.rev == rev {
		s.state.Result = copyResult(&result)
	}
	return result, nil
}

// mutate applies fn to a copy of the state under the write lock. On success
// the old state goes onto the undo stack and the cached result is dropped.
func (s *Session) mutate(label string, fn func(*State) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&next); err != nil {
		return State{}, err
	}
	next.Result = nil
	next.Label = label
	next.UpdatedAt = time.Now().UTC()

	s.history.Push(s.state)
	s.state = next
	s.rev++
	return s.state.clone(), nil
}

func indexOf(parts []model.Part, id string) int {
	for i, p := range parts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (st State) clone() State {
	cp := st
	cp.Parts = copyParts(st.Parts)
	cp.Settings = copySettings(st.Settings)
	cp.Result = copyResult(st.Result)
	return cp
}

func copyParts(parts []model.Part) []model.Part {
	cp := make([]model.Part, len(parts))
	copy(cp, parts)
	return cp
}

func copySettings(s model.NestingSettings) model.NestingSettings {
	cp := s
	cp.MaterialOrder = append([]string(nil), s.MaterialOrder...)
	if s.MaterialPrices != nil {
		cp.MaterialPrices = make(map[string]float64, len(s.MaterialPrices))
		for k, v := range s.MaterialPrices {
			cp.MaterialPrices[k] = v
		}
	}
	return cp
}

func copyResult(r *model.NestingResult) *model.NestingResult {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Sheets = make([]model.Sheet, len(r.Sheets))
	for i, sh := range r.Sheets {
		cp.Sheets[i] = sh
		cp.Sheets[i].Items = append([]model.PlacedItem(nil), sh.Items...)
	}
	return &cp
}
