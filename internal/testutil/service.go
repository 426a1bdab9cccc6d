package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/reelsync/internal/ir"
)

// Call records one round-trip made against a ScriptedService.
type Call struct {
	Op     string
	SaveID int64
	Arg    string
}

func (c Call) String() string {
	if c.Arg == "" {
		return fmt.Sprintf("%s(%d)", c.Op, c.SaveID)
	}
	return fmt.Sprintf("%s(%d, %s)", c.Op, c.SaveID, c.Arg)
}

// ScriptedService is an in-memory save service with scripted responses.
//
// FetchSave serves Saves; Act pops ActResults in order; Jump serves
// JumpResults keyed by storylet form; CopySave serves CopyResult. Every
// response is also stored in Saves so later fetches see it. Errors maps an
// op name to an error returned instead of a response.
type ScriptedService struct {
	mu sync.Mutex

	Saves       map[int64]*ir.Save
	ActResults  []*ir.Save
	JumpResults map[string]*ir.Save
	CopyResult  *ir.Save
	Errors      map[string]error

	calls  []Call
	nextID int64
}

// NewScriptedService creates a service holding saves.
func NewScriptedService(saves ...*ir.Save) *ScriptedService {
	s := &ScriptedService{
		Saves:       make(map[int64]*ir.Save),
		JumpResults: make(map[string]*ir.Save),
		Errors:      make(map[string]error),
	}
	for _, sv := range saves {
		s.Saves[sv.ID] = sv
		s.nextID = max(s.nextID, sv.ID)
	}
	return s
}

// QueueAct appends responses for subsequent Act calls.
func (s *ScriptedService) QueueAct(saves ...*ir.Save) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ActResults = append(s.ActResults, saves...)
}

// SetJump scripts the response to a jump to storylet.
func (s *ScriptedService) SetJump(storylet string, save *ir.Save) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.JumpResults[ir.ToStoryletForm(storylet)] = save
}

// Fail makes op return err until cleared with Fail(op, nil).
func (s *ScriptedService) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.Errors, op)
		return
	}
	s.Errors[op] = err
}

// Calls returns the recorded round-trips.
func (s *ScriptedService) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CallsTo returns the recorded round-trips for one op.
func (s *ScriptedService) CallsTo(op string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (s *ScriptedService) record(op string, id int64, arg string) error {
	s.calls = append(s.calls, Call{Op: op, SaveID: id, Arg: arg})
	return s.Errors[op]
}

// ListSaves implements service.SaveService.
func (s *ScriptedService) ListSaves(ctx context.Context) ([]ir.SaveSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("list", 0, ""); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(s.Saves))
	for id := range s.Saves {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]ir.SaveSummary, len(ids))
	for i, id := range ids {
		out[i] = ir.SaveSummary{ID: id, CreatedAt: s.Saves[id].CreatedAt, UpdatedAt: s.Saves[id].UpdatedAt}
	}
	return out, nil
}

// CreateSave implements service.SaveService.
func (s *ScriptedService) CreateSave(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("create", 0, ""); err != nil {
		return 0, err
	}
	s.nextID++
	s.Saves[s.nextID] = &ir.Save{ID: s.nextID}
	return s.nextID, nil
}

// FetchSave implements service.SaveService.
func (s *ScriptedService) FetchSave(ctx context.Context, id int64) (*ir.Save, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("fetch", id, ""); err != nil {
		return nil, err
	}
	sv, ok := s.Saves[id]
	if !ok {
		return nil, fmt.Errorf("save %d not found", id)
	}
	return sv.Clone(), nil
}

// Act implements service.SaveService.
func (s *ScriptedService) Act(ctx context.Context, id int64, index int) (*ir.Save, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("act", id, fmt.Sprint(index)); err != nil {
		return nil, err
	}
	if len(s.ActResults) == 0 {
		return nil, fmt.Errorf("no scripted act result for save %d index %d", id, index)
	}
	next := s.ActResults[0]
	s.ActResults = s.ActResults[1:]
	s.Saves[next.ID] = next
	return next.Clone(), nil
}

// Jump implements service.SaveService.
func (s *ScriptedService) Jump(ctx context.Context, id int64, storylet string) (*ir.Save, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("jump", id, storylet); err != nil {
		return nil, err
	}
	next, ok := s.JumpResults[ir.ToStoryletForm(storylet)]
	if !ok {
		return nil, fmt.Errorf("no scripted jump result for %s", storylet)
	}
	s.Saves[next.ID] = next
	return next.Clone(), nil
}

// CopySave implements service.SaveService.
func (s *ScriptedService) CopySave(ctx context.Context, id int64) (*ir.Save, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("copy", id, ""); err != nil {
		return nil, err
	}
	if s.CopyResult == nil {
		return nil, fmt.Errorf("no scripted copy result for save %d", id)
	}
	s.Saves[s.CopyResult.ID] = s.CopyResult
	s.nextID = max(s.nextID, s.CopyResult.ID)
	return s.CopyResult.Clone(), nil
}
