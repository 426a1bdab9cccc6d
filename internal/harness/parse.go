package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/reelsync/internal/ir"
)

// ParseLine parses the compact line syntax.
func ParseLine(s string) (ir.Line, error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil, fmt.Errorf("empty line")
	}

	switch f[0] {
	case "start", "end", "play", "qte", "badge":
		if len(f) != 2 {
			return nil, fmt.Errorf("line %q: want %s <id>", s, f[0])
		}
	case "value":
		if len(f) != 3 {
			return nil, fmt.Errorf("line %q: want value <key> <n>", s)
		}
	}

	switch f[0] {
	case "start":
		return ir.StoryletStart{Storylet: f[1]}, nil
	case "end":
		return ir.StoryletEnd{Storylet: f[1]}, nil
	case "play":
		return ir.PlayVideo{Video: f[1]}, nil
	case "qte":
		name := f[1]
		return ir.FFICall{Name: ir.TriggerQTEContinue, Args: []ir.FFIArg{
			{Identifier: "qte_name", Category: "string", ValueString: &name},
		}}, nil
	case "badge":
		return ir.AssignsBadge{Badge: f[1]}, nil
	case "value":
		n, err := strconv.ParseInt(f[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", s, err)
		}
		return ir.ValueChanged{Key: f[1], Value: ir.Int(n)}, nil
	default:
		return nil, fmt.Errorf("line %q: unknown kind %q", s, f[0])
	}
}

// ParseAction parses the compact pending-action syntax.
func ParseAction(s string) (ir.PendingAction, error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil, fmt.Errorf("empty action")
	}

	switch f[0] {
	case "button":
		if len(f) != 3 {
			return nil, fmt.Errorf("action %q: want button <label> <key>", s)
		}
		return ir.UIButton{Label: f[1], Key: f[2]}, nil
	case "trigger":
		if len(f) != 4 {
			return nil, fmt.Errorf("action %q: want trigger <name> <key> <label>", s)
		}
		return ir.Trigger{Name: f[1], Key: f[2], Label: f[3]}, nil
	default:
		return nil, fmt.Errorf("action %q: unknown kind %q", s, f[0])
	}
}

func (sv SaveSpec) toSave() (*ir.Save, error) {
	save := &ir.Save{ID: sv.ID, VisitedStorylets: sv.Visited}
	for _, s := range sv.Lines {
		l, err := ParseLine(s)
		if err != nil {
			return nil, err
		}
		save.Timeline.Lines = append(save.Timeline.Lines, l)
	}
	for _, s := range sv.Actions {
		a, err := ParseAction(s)
		if err != nil {
			return nil, err
		}
		save.Timeline.Actions = append(save.Timeline.Actions, a)
	}
	return save, nil
}

// describe renders an instruction for traces: the video, " loop" when it
// loops, and " +type" per action group.
func describe(in ir.Instruction) string {
	var b strings.Builder
	b.WriteString(in.VideoID)
	if in.Loop {
		b.WriteString(" loop")
	}
	for _, g := range in.ActionGroups {
		b.WriteString(" +")
		b.WriteString(g.GroupType())
	}
	return b.String()
}
