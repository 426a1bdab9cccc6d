package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/reelsync/internal/ir"
)

// PossibilityChance is the hit probability of a possibility trigger.
const PossibilityChance = 0.2

// CountThreshold is the trigger count at which a count trigger reports
// enough.
const CountThreshold = 3

// Commit keys sent back for system triggers.
const (
	KeySuccess   = "success"
	KeyFailure   = "failure"
	KeyEnough    = "enough"
	KeyNotEnough = "not_enough"
)

// Rule names recorded on an Outcome.
const (
	RulePossibility = "possibility_trigger"
	RuleCount       = "count_trigger"
	RuleQTE         = "qte"
	RuleButtons     = "ui_button"
	RuleDeadEnd     = "dead_end"
)

// State is the resolver's process state. It survives passes and is
// cleared only by Reset.
type State struct {
	TriggerCount int `json:"trigger_count"`
}

// Reset clears the state.
func (s *State) Reset() { *s = State{} }

// Commit is a round-trip the caller must perform: act on Selector, with
// Refs as the list a key selector is resolved against.
type Commit struct {
	Selector ir.Selector
	Refs     []ir.PendingAction
}

// Outcome reports what Resolve decided.
type Outcome struct {
	// Commit is set when a round-trip is required.
	Commit *Commit

	// Cleared means the pending actions were consumed and must be emptied
	// on the snapshot before it is installed.
	Cleared bool

	// DeadEnd means choices were pending with nothing to attach them to.
	// The pass is abandoned in favour of Commit.
	DeadEnd bool

	// Rule names the branch taken, "" when nothing was pending.
	Rule string
}

// Resolver turns pending actions into queue attachments or commits.
type Resolver struct {
	roller Roller
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRoller sets the source of possibility draws.
func WithRoller(r Roller) Option {
	return func(res *Resolver) {
		res.roller = r
	}
}

// New creates a Resolver. Without WithRoller it draws from math/rand/v2.
func New(opts ...Option) *Resolver {
	r := &Resolver{roller: RandomRoller{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve applies the pending-action rules to queue and returns it. The
// queue is owned by the caller's pass; only its last instruction is
// touched. st may be nil, in which case count triggers start from zero.
func (r *Resolver) Resolve(queue []ir.Instruction, pending []ir.PendingAction, st *State) ([]ir.Instruction, Outcome, error) {
	if len(pending) == 0 {
		return queue, Outcome{}, nil
	}
	for i, a := range pending {
		if a == nil {
			return nil, Outcome{}, fmt.Errorf("pending action %d: %w", i, &ir.UnhandledVariantError{Kind: "pending action", Tag: "<nil>"})
		}
	}
	if st == nil {
		st = &State{}
	}

	if trig, ok := pending[0].(ir.Trigger); ok {
		switch trig.Name {
		case ir.TriggerPossibility:
			key := KeyFailure
			if r.roller.Chance(PossibilityChance) {
				key = KeySuccess
			}
			return queue, commitKey(key, pending, RulePossibility), nil

		case ir.TriggerCount:
			st.TriggerCount++
			key := KeyNotEnough
			if st.TriggerCount >= CountThreshold {
				key = KeyEnough
			}
			return queue, commitKey(key, pending, RuleCount), nil

		case ir.TriggerQTE, ir.TriggerQTESlide:
			if len(queue) > 0 {
				attachQTE(&queue[len(queue)-1], trig.Name, pending)
				return queue, Outcome{Cleared: true, Rule: RuleQTE}, nil
			}
		}
	}

	if len(queue) == 0 {
		return queue, Outcome{
			Commit:  &Commit{Selector: ir.ByIndex(0)},
			DeadEnd: true,
			Rule:    RuleDeadEnd,
		}, nil
	}

	attachButtons(&queue[len(queue)-1], pending)
	return queue, Outcome{Rule: RuleButtons}, nil
}

func commitKey(key string, pending []ir.PendingAction, rule string) Outcome {
	return Outcome{
		Commit:  &Commit{Selector: ir.ByKey(key), Refs: slices.Clone(pending)},
		Cleared: true,
		Rule:    rule,
	}
}

func attachQTE(last *ir.Instruction, qteType string, pending []ir.PendingAction) {
	items := make([]ir.ActionItem, len(pending))
	for i, a := range pending {
		items[i] = ir.ActionItem{Prompt: a.Field(3), Index: i, Key: a.Field(2)}
	}
	last.Loop = strings.Contains(strings.ToLower(last.VideoID), "loop")
	last.ActionGroups = append(last.ActionGroups, ir.QTEGroup{
		ID:      last.VideoID,
		QTEType: qteType,
		Actions: items,
	})
}

func attachButtons(last *ir.Instruction, pending []ir.PendingAction) {
	group := ir.UIButtonGroup{Actions: []ir.ActionItem{}}
	for _, a := range pending {
		if b, ok := a.(ir.UIButton); ok {
			group.Actions = append(group.Actions, ir.ActionItem{
				Prompt: b.Label,
				Index:  len(group.Actions),
				Key:    b.Key,
			})
		}
	}

	timed := slices.IndexFunc(pending, func(a ir.PendingAction) bool {
		return a.Field(1) == ir.TimeLimitChoose
	})
	if timed < 0 {
		last.Loop = true
	} else {
		group.TimeLimitedActionIndex = &timed
	}
	last.ActionGroups = append(last.ActionGroups, group)
}
