package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/reelsync/internal/engine"
	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/testutil"
)

// Harness holds the engine and scripted server of one run.
type Harness struct {
	engine *engine.Engine
	svc    *testutil.ScriptedService
	roller *testutil.FixedRoller
	seen   int
}

// Run executes a scenario and returns the result. The error is non-nil
// only when the scenario cannot be set up; failed expectations are
// reported on the Result.
//
// Execution flow:
//  1. Load the manifest and build the index
//  2. Script the save server
//  3. Run every step, recording a trace entry after each
//  4. Evaluate assertions against the final state
func Run(scenario *Scenario) (*Result, error) {
	m, err := graph.LoadManifest(scenario.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	idx, err := graph.Build(m)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	svc, err := scenario.Server.build()
	if err != nil {
		return nil, fmt.Errorf("failed to script server: %w", err)
	}

	h := &Harness{
		svc:    svc,
		roller: testutil.NewFixedRoller(scenario.Roll...),
	}
	opts := []engine.Option{
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs
		engine.WithRoller(h.roller),
		engine.WithPassIDs(testutil.NewSequentialPassIDs(scenario.Name)),
	}
	if scenario.MaxCommitDepth > 0 {
		opts = append(opts, engine.WithMaxCommitDepth(scenario.MaxCommitDepth))
	}
	h.engine = engine.New(svc, idx, opts...)

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		entry := h.execute(ctx, i, step)
		if entry.Error != step.ExpectError {
			result.AddError(fmt.Sprintf("step %d (%s): expected error %q, got %q", i, step.Op, step.ExpectError, entry.Error))
		}
		result.Trace = append(result.Trace, entry)
	}

	for _, msg := range EvaluateAssertions(result, h, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// execute runs one step and records the state after it.
func (h *Harness) execute(ctx context.Context, i int, step Step) TraceEntry {
	e := h.engine
	var err error

	switch step.Op {
	case OpFullSync:
		err = e.FullSync(ctx)
	case OpSpeculativeSync:
		err = e.SpeculativeSync(ctx)
	case OpCommit:
		sel := ir.ByIndex(0)
		if step.Key != "" {
			sel = ir.ByKey(step.Key)
		} else if step.Index != nil {
			sel = ir.ByIndex(*step.Index)
		}
		err = e.CommitAction(ctx, sel)
	case OpRewind:
		err = e.RewindTo(ctx, step.ID)
	case OpStart:
		err = e.Start(ctx)
	case OpAdvance:
		e.Advance()
	case OpCopy:
		err = e.CopyAndSwitch(ctx, step.SaveID)
	case OpNewSave:
		err = e.ForceNewSave(ctx)
	case OpReset:
		e.ResetAll()
	default:
		err = fmt.Errorf("unknown op %q", step.Op)
	}

	calls := h.svc.Calls()
	entry := TraceEntry{
		Step:   i,
		Op:     step.Op,
		Calls:  make([]string, 0, len(calls)-h.seen),
		Cursor: string(e.CursorState()),
		Queue:  []string{},
	}
	for _, c := range calls[h.seen:] {
		entry.Calls = append(entry.Calls, c.String())
	}
	h.seen = len(calls)

	if err != nil {
		entry.Error = string(engine.CodeOf(err))
	}
	if save := e.Save(); save != nil {
		entry.SaveID = save.ID
	}
	for _, in := range e.Queue() {
		entry.Queue = append(entry.Queue, describe(in))
	}
	return entry
}

func (s ServerScript) build() (*testutil.ScriptedService, error) {
	var saves []*ir.Save
	for _, sv := range s.Saves {
		save, err := sv.toSave()
		if err != nil {
			return nil, err
		}
		saves = append(saves, save)
	}
	svc := testutil.NewScriptedService(saves...)

	for _, sv := range s.Act {
		save, err := sv.toSave()
		if err != nil {
			return nil, err
		}
		svc.QueueAct(save)
	}
	for storylet, sv := range s.Jump {
		save, err := sv.toSave()
		if err != nil {
			return nil, err
		}
		svc.SetJump(storylet, save)
	}
	if s.Copy != nil {
		save, err := s.Copy.toSave()
		if err != nil {
			return nil, err
		}
		svc.CopyResult = save
	}
	return svc, nil
}
