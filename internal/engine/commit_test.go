package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/reelsync/internal/ir"
)

func TestResolveIndex(t *testing.T) {
	refs := []ir.PendingAction{
		ir.Trigger{Name: ir.TriggerPossibility, Key: "s", Label: "success"},
		ir.Trigger{Name: ir.TriggerPossibility, Key: "f", Label: "failure"},
	}

	tests := []struct {
		name   string
		sel    ir.Selector
		refs   []ir.PendingAction
		want   int
		wantOK bool
	}{
		{"key found", ir.ByKey("failure"), refs, 1, true},
		{"key missing falls back to 0", ir.ByKey("nope"), refs, 0, true},
		{"key without refs is skipped", ir.ByKey("success"), nil, 0, false},
		{"key with empty refs", ir.ByKey("success"), []ir.PendingAction{}, 0, true},
		{"index in range", ir.ByIndex(1), refs, 1, true},
		{"index past refs clamps to 0", ir.ByIndex(5), refs, 0, true},
		{"negative index clamps to 0", ir.ByIndex(-2), nil, 0, true},
		{"index without refs is not clamped", ir.ByIndex(5), nil, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveIndex(tt.sel, tt.refs)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
