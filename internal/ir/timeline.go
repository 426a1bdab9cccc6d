package ir

import (
	"encoding/json"
	"fmt"
)

// Line tags as they appear in the first position of a wire tuple.
const (
	TagStoryletStart = "storylet_start"
	TagStoryletEnd   = "storylet_end"
	TagPlayVideo     = "play_video"
	TagActions       = "actions"
	TagAssignsBadge  = "assigns_badge"
	TagAssignsState  = "assigns_state"
	TagValueChanged  = "value_changed"
	TagFFI           = "ffi"
)

// Line is one entry of a save's timeline. It is a closed sum type: only the
// types in this file implement it, and every consumer switches over them
// exhaustively.
type Line interface {
	Tag() string

	// Tuple returns the structural wire form: [tag, ...fields].
	Tuple() Array

	line() // sealed
}

// StoryletStart marks entry into a story node.
type StoryletStart struct {
	Storylet string
}

// StoryletEnd marks exit from a story node.
type StoryletEnd struct {
	Storylet         string
	TriggeredActions []string
}

// PlayVideo records that a video segment was played.
type PlayVideo struct {
	Video string
}

// ActionsLine records the pending actions offered at that point.
type ActionsLine struct {
	Actions []PendingAction
}

// AssignsBadge records a badge award.
type AssignsBadge struct {
	Badge string
}

// AssignsState records a story state assignment.
type AssignsState struct {
	Node  string
	State Value
}

// ValueChanged records a delta applied to a named story value.
type ValueChanged struct {
	Key   string
	Value Value
}

// FFICall records a foreign-function call emitted by the story script.
type FFICall struct {
	Name string
	Args []FFIArg
}

// FFIArg is a named argument of an FFICall.
type FFIArg struct {
	Identifier   string   `json:"identifier"`
	Category     string   `json:"category"`
	ValueString  *string  `json:"value_string,omitempty"`
	ValueNumber  *float64 `json:"value_number,omitempty"`
	ValueBoolean *bool    `json:"value_boolean,omitempty"`
}

func (StoryletStart) line() {}
func (StoryletEnd) line()   {}
func (PlayVideo) line()     {}
func (ActionsLine) line()   {}
func (AssignsBadge) line()  {}
func (AssignsState) line()  {}
func (ValueChanged) line()  {}
func (FFICall) line()       {}

func (StoryletStart) Tag() string { return TagStoryletStart }
func (StoryletEnd) Tag() string   { return TagStoryletEnd }
func (PlayVideo) Tag() string     { return TagPlayVideo }
func (ActionsLine) Tag() string   { return TagActions }
func (AssignsBadge) Tag() string  { return TagAssignsBadge }
func (AssignsState) Tag() string  { return TagAssignsState }
func (ValueChanged) Tag() string  { return TagValueChanged }
func (FFICall) Tag() string       { return TagFFI }

func (l StoryletStart) Tuple() Array { return Array{String(l.Tag()), String(l.Storylet)} }

func (l StoryletEnd) Tuple() Array {
	ids := make(Array, len(l.TriggeredActions))
	for i, id := range l.TriggeredActions {
		ids[i] = String(id)
	}
	return Array{String(l.Tag()), String(l.Storylet), ids}
}

func (l PlayVideo) Tuple() Array { return Array{String(l.Tag()), String(l.Video)} }

func (l ActionsLine) Tuple() Array {
	acts := make(Array, len(l.Actions))
	for i, a := range l.Actions {
		acts[i] = a.Tuple()
	}
	return Array{String(l.Tag()), acts}
}

func (l AssignsBadge) Tuple() Array { return Array{String(l.Tag()), String(l.Badge)} }

func (l AssignsState) Tuple() Array {
	return Array{String(l.Tag()), String(l.Node), orNull(l.State)}
}

func (l ValueChanged) Tuple() Array {
	return Array{String(l.Tag()), String(l.Key), orNull(l.Value)}
}

func (l FFICall) Tuple() Array {
	args := make(Array, len(l.Args))
	for i, a := range l.Args {
		args[i] = a.object()
	}
	return Array{String(l.Tag()), String(l.Name), args}
}

// Arg returns the argument with the given identifier.
func (l FFICall) Arg(identifier string) (FFIArg, bool) {
	for _, a := range l.Args {
		if a.Identifier == identifier {
			return a, true
		}
	}
	return FFIArg{}, false
}

func (a FFIArg) object() Object {
	obj := Object{
		"identifier": String(a.Identifier),
		"category":   String(a.Category),
	}
	if a.ValueString != nil {
		obj["value_string"] = String(*a.ValueString)
	}
	if a.ValueNumber != nil {
		obj["value_number"] = Float(*a.ValueNumber)
	}
	if a.ValueBoolean != nil {
		obj["value_boolean"] = Bool(*a.ValueBoolean)
	}
	return obj
}

// StringValue returns value_string, or "" when absent.
func (a FFIArg) StringValue() string {
	if a.ValueString == nil {
		return ""
	}
	return *a.ValueString
}

func orNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

// UnhandledVariantError is returned when a tagged wire value carries a tag
// the client does not know.
type UnhandledVariantError struct {
	Kind string // "line", "pending action", "action group"
	Tag  string
}

func (e *UnhandledVariantError) Error() string {
	return fmt.Sprintf("unhandled %s variant %q", e.Kind, e.Tag)
}

// DecodeLine converts a wire tuple into a Line.
func DecodeLine(t Array) (Line, error) {
	tag, err := tupleString(t, 0)
	if err != nil {
		return nil, fmt.Errorf("line tag: %w", err)
	}

	switch tag {
	case TagStoryletStart:
		id, err := tupleString(t, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		return StoryletStart{Storylet: id}, nil

	case TagStoryletEnd:
		id, err := tupleString(t, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		end := StoryletEnd{Storylet: id}
		if len(t) > 2 {
			var ids Array
			switch f := t[2].(type) {
			case Array:
				ids = f
			case Null:
			default:
				return nil, fmt.Errorf("%s: field 2 is %T, want array", tag, f)
			}
			for _, v := range ids {
				s, ok := v.(String)
				if !ok {
					return nil, fmt.Errorf("%s: triggered action is %T, want string", tag, v)
				}
				end.TriggeredActions = append(end.TriggeredActions, string(s))
			}
		}
		return end, nil

	case TagPlayVideo:
		id, err := tupleString(t, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		return PlayVideo{Video: id}, nil

	case TagActions:
		var acts ActionsLine
		if len(t) > 1 {
			list, ok := t[1].(Array)
			if !ok {
				return nil, fmt.Errorf("%s: payload is %T, want array", tag, t[1])
			}
			for i, v := range list {
				entry, ok := v.(Array)
				if !ok {
					return nil, fmt.Errorf("%s[%d]: entry is %T, want array", tag, i, v)
				}
				a, err := DecodePendingAction(entry)
				if err != nil {
					return nil, fmt.Errorf("%s[%d]: %w", tag, i, err)
				}
				acts.Actions = append(acts.Actions, a)
			}
		}
		return acts, nil

	case TagAssignsBadge:
		id, err := tupleString(t, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		return AssignsBadge{Badge: id}, nil

	case TagAssignsState:
		node, err := tupleString(t, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		return AssignsState{Node: node, State: tupleValue(t, 2)}, nil

	case TagValueChanged:
		key, err := tupleString(t, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		return ValueChanged{Key: key, Value: tupleValue(t, 2)}, nil

	case TagFFI:
		name, err := tupleString(t, 1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tag, err)
		}
		call := FFICall{Name: name}
		if len(t) > 2 {
			raw, err := MarshalValue(t[2])
			if err != nil {
				return nil, fmt.Errorf("%s %s args: %w", tag, name, err)
			}
			if err := json.Unmarshal(raw, &call.Args); err != nil {
				return nil, fmt.Errorf("%s %s args: %w", tag, name, err)
			}
		}
		return call, nil

	default:
		return nil, &UnhandledVariantError{Kind: "line", Tag: tag}
	}
}

func tupleString(t Array, i int) (string, error) {
	if i >= len(t) {
		return "", fmt.Errorf("missing field %d", i)
	}
	s, ok := t[i].(String)
	if !ok {
		return "", fmt.Errorf("field %d is %T, want string", i, t[i])
	}
	return string(s), nil
}

func tupleValue(t Array, i int) Value {
	if i >= len(t) {
		return Null{}
	}
	return t[i]
}

// Lines is a timeline log with tuple-form JSON encoding.
type Lines []Line

// UnmarshalJSON implements json.Unmarshaler for Lines.
func (ls *Lines) UnmarshalJSON(data []byte) error {
	var raw Array
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Lines, 0, len(raw))
	for i, v := range raw {
		t, ok := v.(Array)
		if !ok {
			return fmt.Errorf("line %d: %T, want tuple", i, v)
		}
		l, err := DecodeLine(t)
		if err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
		out = append(out, l)
	}
	*ls = out
	return nil
}

// MarshalJSON implements json.Marshaler for Lines.
func (ls Lines) MarshalJSON() ([]byte, error) {
	arr := make(Array, len(ls))
	for i, l := range ls {
		arr[i] = l.Tuple()
	}
	return arr.MarshalJSON()
}
