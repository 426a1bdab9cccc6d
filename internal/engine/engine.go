package engine

import (
	"log/slog"
	"slices"

	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/resolver"
	"github.com/roach88/reelsync/internal/service"
	"github.com/roach88/reelsync/internal/timeline"
)

// Engine is the save orchestrator. It owns the held snapshot, the queue,
// the cursor and the process state that survives passes (trigger counter,
// watched videos).
//
// Thread-safety model:
//   - every method must be called from one goroutine at a time
//   - the Engine is not reentrant: an Observer must not call back into it
//   - Driver provides the serialization for concurrent frontends
type Engine struct {
	svc      service.SaveService
	idx      *graph.Index
	resolver *resolver.Resolver
	journal  Journal
	observer Observer
	passIDs  PassIDGenerator
	clock    Sequencer
	logger   *slog.Logger
	maxDepth int

	save            *ir.Save
	queue           []ir.Instruction
	cursor          CursorState
	currentStorylet string
	watched         map[string]struct{}
	state           resolver.State
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithRoller sets the source of possibility-trigger draws.
func WithRoller(r resolver.Roller) Option {
	return func(e *Engine) {
		e.resolver = resolver.New(resolver.WithRoller(r))
	}
}

// WithMaxCommitDepth sets the commit chain quota.
//
// Default: 32 (DefaultMaxCommitDepth)
func WithMaxCommitDepth(n int) Option {
	return func(e *Engine) {
		e.maxDepth = n
	}
}

// WithJournal records every pass into j.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithObserver registers a callback for state changes.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithPassIDs sets the pass id generator. Default: UUIDv7Generator.
func WithPassIDs(g PassIDGenerator) Option {
	return func(e *Engine) {
		e.passIDs = g
	}
}

// WithClock sets the logical clock, e.g. resumed from the journal.
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over a save service and a story graph index.
func New(svc service.SaveService, idx *graph.Index, opts ...Option) *Engine {
	e := &Engine{
		svc:      svc,
		idx:      idx,
		resolver: resolver.New(),
		passIDs:  UUIDv7Generator{},
		clock:    NewClock(),
		logger:   slog.Default(),
		maxDepth: DefaultMaxCommitDepth,
		cursor:   CursorIdle,
		watched:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Save returns a copy of the held snapshot, or nil.
func (e *Engine) Save() *ir.Save {
	return e.save.Clone()
}

// Queue returns a copy of the instruction queue.
func (e *Engine) Queue() []ir.Instruction {
	return ir.CloneQueue(e.queue)
}

// CursorState returns the playback cursor state.
func (e *Engine) CursorState() CursorState {
	return e.cursor
}

// CurrentVideo returns the video at the cursor, or "" when idle.
func (e *Engine) CurrentVideo() string {
	if e.cursor != CursorActive || len(e.queue) == 0 {
		return ""
	}
	return e.queue[0].VideoID
}

// CurrentStorylet returns the storylet the player is in.
func (e *Engine) CurrentStorylet() string {
	return e.currentStorylet
}

// TriggerCount returns the count-trigger counter.
func (e *Engine) TriggerCount() int {
	return e.state.TriggerCount
}

// Watched returns the watched videos in video form, sorted.
func (e *Engine) Watched() []string {
	out := make([]string, 0, len(e.watched))
	for v := range e.watched {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// IsWatched reports whether video has been watched.
func (e *Engine) IsWatched(video string) bool {
	_, ok := e.watched[ir.ToVideoForm(video)]
	return ok
}

// Progress derives the chapter progress view from the held save.
func (e *Engine) Progress() timeline.Progress {
	return timeline.ComputeProgress(e.save, e.currentStorylet, e.idx)
}

// View returns the state pushed to observers.
func (e *Engine) View() View {
	v := View{
		Queue:           e.Queue(),
		Cursor:          e.cursor,
		CurrentVideo:    e.CurrentVideo(),
		CurrentStorylet: e.currentStorylet,
	}
	if v.Queue == nil {
		v.Queue = []ir.Instruction{}
	}
	if e.save != nil {
		v.SaveID = e.save.ID
	}
	return v
}

func (e *Engine) markWatched(video string) {
	e.watched[ir.ToVideoForm(video)] = struct{}{}
}

func (e *Engine) notify() {
	if e.observer != nil {
		e.observer(e.View())
	}
}
