package ir

import (
	"encoding/json"
	"fmt"
)

// Pending action tags.
const (
	TagUIButton = "ui_button"
	TagTrigger  = "ffi"
)

// System trigger names carried by Trigger.Name.
const (
	TriggerPossibility = "possibility_trigger"
	TriggerCount       = "count_trigger"
	TriggerQTE         = "qte_trigger"
	TriggerQTESlide    = "qte_slide"
	TriggerQTEContinue = "qte_continue"
)

// TimeLimitChoose is the button label that marks a timed choice.
const TimeLimitChoose = "time_limit_choose"

// PendingAction is one choice the server is waiting on. Its position in the
// pending list is the selector sent back when committing.
type PendingAction interface {
	// Field returns the positional wire field i, or "" when absent.
	Field(i int) string

	Tuple() Array

	pendingAction() // sealed
}

// UIButton is a user-facing choice: ["ui_button", label, key].
type UIButton struct {
	Label string
	Key   string
}

// Trigger is a system trigger: ["ffi", name, key, label].
type Trigger struct {
	Name  string
	Key   string
	Label string
}

func (UIButton) pendingAction() {}
func (Trigger) pendingAction()  {}

func (b UIButton) Field(i int) string {
	switch i {
	case 0:
		return TagUIButton
	case 1:
		return b.Label
	case 2:
		return b.Key
	}
	return ""
}

func (t Trigger) Field(i int) string {
	switch i {
	case 0:
		return TagTrigger
	case 1:
		return t.Name
	case 2:
		return t.Key
	case 3:
		return t.Label
	}
	return ""
}

func (b UIButton) Tuple() Array {
	return Array{String(TagUIButton), String(b.Label), String(b.Key)}
}

func (t Trigger) Tuple() Array {
	return Array{String(TagTrigger), String(t.Name), String(t.Key), String(t.Label)}
}

// DecodePendingAction converts a wire tuple into a PendingAction.
func DecodePendingAction(t Array) (PendingAction, error) {
	tag, err := tupleString(t, 0)
	if err != nil {
		return nil, fmt.Errorf("pending action tag: %w", err)
	}
	field := func(i int) string {
		if i >= len(t) {
			return ""
		}
		switch v := t[i].(type) {
		case String:
			return string(v)
		case Int, Float:
			b, _ := MarshalValue(v)
			return string(b)
		}
		return ""
	}

	switch tag {
	case TagUIButton:
		return UIButton{Label: field(1), Key: field(2)}, nil
	case TagTrigger:
		return Trigger{Name: field(1), Key: field(2), Label: field(3)}, nil
	default:
		return nil, &UnhandledVariantError{Kind: "pending action", Tag: tag}
	}
}

// PendingActions is a pending-action list with tuple-form JSON encoding.
type PendingActions []PendingAction

// UnmarshalJSON implements json.Unmarshaler for PendingActions.
func (pa *PendingActions) UnmarshalJSON(data []byte) error {
	var raw Array
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(PendingActions, 0, len(raw))
	for i, v := range raw {
		t, ok := v.(Array)
		if !ok {
			return fmt.Errorf("pending action %d: %T, want tuple", i, v)
		}
		a, err := DecodePendingAction(t)
		if err != nil {
			return fmt.Errorf("pending action %d: %w", i, err)
		}
		out = append(out, a)
	}
	*pa = out
	return nil
}

// MarshalJSON implements json.Marshaler for PendingActions.
func (pa PendingActions) MarshalJSON() ([]byte, error) {
	arr := make(Array, len(pa))
	for i, a := range pa {
		arr[i] = a.Tuple()
	}
	return arr.MarshalJSON()
}

// Selector picks one pending action, either by list index or by key.
type Selector struct {
	Index int
	Key   string
	byKey bool
}

// ByIndex selects the pending action at position i.
func ByIndex(i int) Selector { return Selector{Index: i} }

// ByKey selects the pending action whose label field equals key.
func ByKey(key string) Selector { return Selector{Key: key, byKey: true} }

// IsKey reports whether the selector addresses by key.
func (s Selector) IsKey() bool { return s.byKey }

func (s Selector) String() string {
	if s.byKey {
		return fmt.Sprintf("key:%s", s.Key)
	}
	return fmt.Sprintf("index:%d", s.Index)
}
