package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/testutil"
)

var (
	start = testutil.Start
	play  = testutil.Play
)

func TestDiff(t *testing.T) {
	a, b, c, d := start("a01_a001_a001"), play("01_001_001"), play("01_001_002"), play("01_002_001")

	tests := []struct {
		name       string
		prev, next []ir.Line
		hadPrev    bool
		rolledBack []ir.Line
		appended   []ir.Line
		kind       Kind
	}{
		{
			name:     "no previous snapshot",
			next:     []ir.Line{a, b},
			appended: []ir.Line{a, b},
			kind:     KindAppend,
		},
		{
			name:    "no previous snapshot and empty log",
			kind:    KindNoOp,
			hadPrev: false,
		},
		{
			name:     "pure growth",
			prev:     []ir.Line{a, b},
			next:     []ir.Line{a, b, c},
			hadPrev:  true,
			appended: []ir.Line{c},
			kind:     KindAppend,
		},
		{
			name:    "identical",
			prev:    []ir.Line{a, b},
			next:    []ir.Line{a, b},
			hadPrev: true,
			kind:    KindNoOp,
		},
		{
			name:       "divergence",
			prev:       []ir.Line{a, b, c},
			next:       []ir.Line{a, b, d},
			hadPrev:    true,
			rolledBack: []ir.Line{c},
			appended:   []ir.Line{d},
			kind:       KindRollback,
		},
		{
			name:       "truncation",
			prev:       []ir.Line{a, b, c},
			next:       []ir.Line{a},
			hadPrev:    true,
			rolledBack: []ir.Line{b, c},
			kind:       KindRollback,
		},
		{
			name:       "first entry differs",
			prev:       []ir.Line{b},
			next:       []ir.Line{a, b},
			hadPrev:    true,
			rolledBack: []ir.Line{b},
			appended:   []ir.Line{a, b},
			kind:       KindRollback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Diff(tt.prev, tt.next, tt.hadPrev)
			assert.Equal(t, tt.rolledBack, d.RolledBack)
			assert.Equal(t, tt.appended, d.Appended)
			assert.Equal(t, tt.kind, d.Kind())
		})
	}
}

func TestDiffConcatenationReconstructsLogs(t *testing.T) {
	prev := []ir.Line{start("a01_a001_a001"), play("01_001_001"), play("01_001_002")}
	next := []ir.Line{start("a01_a001_a001"), play("01_001_001"), play("01_002_001"), play("01_002_002_LOOP")}

	d := Diff(prev, next, true)
	common := prev[:d.Divergence]

	assert.Equal(t, prev, append(append([]ir.Line{}, common...), d.RolledBack...))
	assert.Equal(t, next, append(append([]ir.Line{}, common...), d.Appended...))
}

func TestDeltaNeedsFullReplay(t *testing.T) {
	assert.True(t, Delta{}.NeedsFullReplay(), "nothing new")
	assert.True(t, Delta{RolledBack: []ir.Line{play("x")}, Appended: []ir.Line{play("y")}}.NeedsFullReplay())
	assert.False(t, Delta{Appended: []ir.Line{play("y")}}.NeedsFullReplay())
}

func TestFirstDivergence(t *testing.T) {
	a := []ir.Line{play("1"), play("2")}
	assert.Equal(t, 2, FirstDivergence(a, a))
	assert.Equal(t, 1, FirstDivergence(a, []ir.Line{play("1")}))
	assert.Equal(t, 0, FirstDivergence(nil, a))
	assert.Equal(t, 0, FirstDivergence(nil, nil))
}
