package ir

import (
	"encoding/json"
	"fmt"
	"slices"
)

// EndingKind is the medal awarded by an ending video.
type EndingKind string

const (
	EndingGold   EndingKind = "gold"
	EndingSilver EndingKind = "silver"
	EndingBronze EndingKind = "bronze"
)

// Valid reports whether k is a known ending kind.
func (k EndingKind) Valid() bool {
	switch k {
	case EndingGold, EndingSilver, EndingBronze:
		return true
	}
	return false
}

// Group type discriminators used in JSON.
const (
	GroupEnding    = "ending"
	GroupAnimation = "animation"
	GroupQTE       = "qte"
	GroupUIButton  = "ui_button"
)

// AnimationChapterEnd is the only animation the compiler emits.
const AnimationChapterEnd = "chapter_end"

// unknownKey fills the key of items that do not map to a pending action.
const unknownKey = "unknown"

// Instruction is one playable entry of the queue: a video plus the
// affordances shown when it finishes.
type Instruction struct {
	StoryletID   string        `json:"storylet_id"`
	VideoID      string        `json:"video_id"`
	Loop         bool          `json:"loop"`
	ActionGroups []ActionGroup `json:"action_groups"`
}

// ActionItem is one selectable entry of an action group.
type ActionItem struct {
	Prompt string `json:"prompt"`
	Index  int    `json:"index"`
	Key    string `json:"key"`
}

// ActionGroup is a closed sum type over the affordances attached to an
// instruction.
type ActionGroup interface {
	GroupType() string
	actionGroup() // sealed
}

// EndingGroup marks an ending video.
type EndingGroup struct {
	Kind    EndingKind
	Chapter int
}

// AnimationGroup requests a transition animation after the video.
type AnimationGroup struct {
	Name    string
	Chapter int
}

// QTEGroup is a quick-time prompt.
type QTEGroup struct {
	ID      string
	QTEType string
	Actions []ActionItem
}

// UIButtonGroup is a set of user choices. TimeLimitedActionIndex, when set,
// is the pending-list index of the choice taken when the timer runs out.
type UIButtonGroup struct {
	Actions                []ActionItem
	TimeLimitedActionIndex *int
}

func (EndingGroup) actionGroup()    {}
func (AnimationGroup) actionGroup() {}
func (QTEGroup) actionGroup()       {}
func (UIButtonGroup) actionGroup()  {}

func (EndingGroup) GroupType() string    { return GroupEnding }
func (AnimationGroup) GroupType() string { return GroupAnimation }
func (QTEGroup) GroupType() string       { return GroupQTE }
func (UIButtonGroup) GroupType() string  { return GroupUIButton }

type groupJSON struct {
	Type                   string       `json:"type"`
	ID                     string       `json:"id,omitempty"`
	QTEType                string       `json:"qte_type,omitempty"`
	Actions                []ActionItem `json:"actions"`
	TimeLimitedActionIndex *int         `json:"time_limited_action_index,omitempty"`
}

func (g EndingGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupJSON{
		Type:    GroupEnding,
		Actions: []ActionItem{{Prompt: string(g.Kind), Index: g.Chapter, Key: unknownKey}},
	})
}

func (g AnimationGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupJSON{
		Type:    GroupAnimation,
		Actions: []ActionItem{{Prompt: g.Name, Index: g.Chapter, Key: unknownKey}},
	})
}

func (g QTEGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupJSON{
		Type:    GroupQTE,
		ID:      g.ID,
		QTEType: g.QTEType,
		Actions: nonNilItems(g.Actions),
	})
}

func (g UIButtonGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupJSON{
		Type:                   GroupUIButton,
		Actions:                nonNilItems(g.Actions),
		TimeLimitedActionIndex: g.TimeLimitedActionIndex,
	})
}

func nonNilItems(items []ActionItem) []ActionItem {
	if items == nil {
		return []ActionItem{}
	}
	return items
}

// MarshalJSON implements json.Marshaler for Instruction. A missing group
// list is written as [].
func (in Instruction) MarshalJSON() ([]byte, error) {
	type plain Instruction
	p := plain(in)
	if p.ActionGroups == nil {
		p.ActionGroups = []ActionGroup{}
	}
	return json.Marshal(p)
}

// UnmarshalJSON implements json.Unmarshaler for Instruction.
func (in *Instruction) UnmarshalJSON(data []byte) error {
	var raw struct {
		StoryletID   string      `json:"storylet_id"`
		VideoID      string      `json:"video_id"`
		Loop         bool        `json:"loop"`
		ActionGroups []groupJSON `json:"action_groups"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*in = Instruction{StoryletID: raw.StoryletID, VideoID: raw.VideoID, Loop: raw.Loop}
	for i, g := range raw.ActionGroups {
		group, err := g.decode()
		if err != nil {
			return fmt.Errorf("action_groups[%d]: %w", i, err)
		}
		in.ActionGroups = append(in.ActionGroups, group)
	}
	return nil
}

func (g groupJSON) decode() (ActionGroup, error) {
	first := ActionItem{}
	if len(g.Actions) > 0 {
		first = g.Actions[0]
	}
	switch g.Type {
	case GroupEnding:
		return EndingGroup{Kind: EndingKind(first.Prompt), Chapter: first.Index}, nil
	case GroupAnimation:
		return AnimationGroup{Name: first.Prompt, Chapter: first.Index}, nil
	case GroupQTE:
		return QTEGroup{ID: g.ID, QTEType: g.QTEType, Actions: g.Actions}, nil
	case GroupUIButton:
		return UIButtonGroup{Actions: g.Actions, TimeLimitedActionIndex: g.TimeLimitedActionIndex}, nil
	default:
		return nil, &UnhandledVariantError{Kind: "action group", Tag: g.Type}
	}
}

// Clone returns a deep copy of the instruction.
func (in Instruction) Clone() Instruction {
	out := in
	if in.ActionGroups == nil {
		return out
	}
	out.ActionGroups = make([]ActionGroup, len(in.ActionGroups))
	for i, g := range in.ActionGroups {
		switch v := g.(type) {
		case QTEGroup:
			v.Actions = slices.Clone(v.Actions)
			out.ActionGroups[i] = v
		case UIButtonGroup:
			v.Actions = slices.Clone(v.Actions)
			if v.TimeLimitedActionIndex != nil {
				idx := *v.TimeLimitedActionIndex
				v.TimeLimitedActionIndex = &idx
			}
			out.ActionGroups[i] = v
		default:
			out.ActionGroups[i] = g
		}
	}
	return out
}

// CloneQueue deep-copies a queue.
func CloneQueue(q []Instruction) []Instruction {
	if q == nil {
		return nil
	}
	out := make([]Instruction, len(q))
	for i, in := range q {
		out[i] = in.Clone()
	}
	return out
}

// QueueVideos lists the video ids of a queue in order.
func QueueVideos(q []Instruction) []string {
	out := make([]string, len(q))
	for i, in := range q {
		out[i] = in.VideoID
	}
	return out
}
