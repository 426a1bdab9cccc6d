package compiler

import (
	"fmt"
	"log/slog"

	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/timeline"
)

// qteNameArg is the ffi argument that names a continued QTE.
const qteNameArg = "qte_name"

// Options controls one replay.
type Options struct {
	// Target is an explicit story node to resume from. When set, lines are
	// folded but not emitted until a storylet_start or storylet_end for
	// Target is seen. When empty, every line in range is emitted.
	Target string
}

// Stats describes what a replay did.
type Stats struct {
	FullReplay bool `json:"full_replay"`
	Replayed   int  `json:"replayed"`
	Emitted    int  `json:"emitted"`
	Armed      bool `json:"armed"`
}

// replay is the fold state of one pass.
type replay struct {
	idx      *graph.Index
	target   string
	storylet string
	armed    bool
	queue    []ir.Instruction
	emitted  int
}

// Replay folds the selected range of lines into queue and returns the new
// queue. The caller hands over ownership of queue; it must not be used
// after the call.
//
// Range selection: a rollback, or a delta with nothing appended, clears
// the queue and replays every line of the new log. A pure append replays
// only the appended lines on top of the existing queue.
func Replay(queue []ir.Instruction, delta timeline.Delta, lines []ir.Line, idx *graph.Index, opts Options) ([]ir.Instruction, Stats, error) {
	events := delta.Appended
	full := delta.NeedsFullReplay()
	if full {
		queue = queue[:0]
		events = lines
	}

	r := &replay{
		idx:    idx,
		target: opts.Target,
		armed:  opts.Target == "",
		queue:  queue,
	}
	if r.target != "" {
		r.target = ir.ToStoryletForm(r.target)
	}
	if !full {
		r.storylet = lastStorylet(lines[:min(delta.Divergence, len(lines))])
	}

	for i, l := range events {
		if err := r.apply(l); err != nil {
			return nil, Stats{}, fmt.Errorf("replay line %d (%s): %w", i, tagOf(l), err)
		}
	}

	slog.Debug("timeline replayed",
		"full", full,
		"lines", len(events),
		"emitted", r.emitted,
		"queue_len", len(r.queue),
		"armed", r.armed)

	return r.queue, Stats{FullReplay: full, Replayed: len(events), Emitted: r.emitted, Armed: r.armed}, nil
}

// lastStorylet returns the node of the last storylet line, so appended
// videos keep the storylet they were played in.
func lastStorylet(lines []ir.Line) string {
	for i := len(lines) - 1; i >= 0; i-- {
		switch l := lines[i].(type) {
		case ir.StoryletStart:
			return l.Storylet
		case ir.StoryletEnd:
			return l.Storylet
		}
	}
	return ""
}

func tagOf(l ir.Line) string {
	if l == nil {
		return "nil"
	}
	return l.Tag()
}

func (r *replay) apply(l ir.Line) error {
	switch l := l.(type) {
	case ir.StoryletStart:
		r.enter(l.Storylet)
	case ir.StoryletEnd:
		r.enter(l.Storylet)
	case ir.PlayVideo:
		if r.armed {
			return r.emit(l.Video)
		}
	case ir.FFICall:
		if r.armed && l.Name == ir.TriggerQTEContinue {
			r.continueQTE(l)
		}
	case ir.ActionsLine, ir.AssignsBadge, ir.AssignsState, ir.ValueChanged:
		// no playback effect
	default:
		return &ir.UnhandledVariantError{Kind: "line", Tag: fmt.Sprintf("%T", l)}
	}
	return nil
}

func (r *replay) enter(storylet string) {
	r.storylet = storylet
	if !r.armed && ir.ToStoryletForm(storylet) == r.target {
		r.armed = true
	}
}

func (r *replay) emit(video string) error {
	in := ir.Instruction{StoryletID: r.storylet, VideoID: video}

	if kind, ok := r.idx.EndingKind(video); ok {
		ch, err := ir.ChapterOf(video)
		if err != nil {
			return err
		}
		in.ActionGroups = append(in.ActionGroups, ir.EndingGroup{Kind: kind, Chapter: ch})
	} else if r.idx.IsChapterEnding(video) {
		ch, err := ir.ChapterOf(video)
		if err != nil {
			return err
		}
		in.ActionGroups = append(in.ActionGroups, ir.AnimationGroup{Name: ir.AnimationChapterEnd, Chapter: ch})
	}

	r.queue = append(r.queue, in)
	r.emitted++
	return nil
}

// continueQTE turns the last instruction into a looping QTE prompt.
func (r *replay) continueQTE(call ir.FFICall) {
	if len(r.queue) == 0 {
		return
	}
	id := ""
	if arg, ok := call.Arg(qteNameArg); ok {
		id = arg.StringValue()
	}
	last := &r.queue[len(r.queue)-1]
	last.Loop = true
	last.ActionGroups = append(last.ActionGroups, ir.QTEGroup{ID: id})
}
