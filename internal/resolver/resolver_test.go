package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/testutil"
)

func queueOf(videos ...string) []ir.Instruction {
	q := make([]ir.Instruction, len(videos))
	for i, v := range videos {
		q[i] = ir.Instruction{StoryletID: "a01_a001_a001", VideoID: v}
	}
	return q
}

func trigger(name string) ir.Trigger {
	return ir.Trigger{Name: name, Key: "k", Label: "l"}
}

func TestResolveNothingPending(t *testing.T) {
	q, out, err := New().Resolve(queueOf("01_001_001"), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, Outcome{}, out)
	assert.Equal(t, queueOf("01_001_001"), q)
}

func TestResolvePossibilityTrigger(t *testing.T) {
	pending := []ir.PendingAction{
		ir.Trigger{Name: ir.TriggerPossibility, Key: "s", Label: KeySuccess},
		ir.Trigger{Name: ir.TriggerPossibility, Key: "f", Label: KeyFailure},
	}

	tests := []struct {
		name string
		hit  bool
		want string
	}{
		{"hit", true, KeySuccess},
		{"miss", false, KeyFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := testutil.NewFixedRoller(tt.hit)
			q, out, err := New(WithRoller(roller)).Resolve(queueOf("01_001_001"), pending, nil)
			require.NoError(t, err)

			require.NotNil(t, out.Commit)
			assert.Equal(t, ir.ByKey(tt.want), out.Commit.Selector)
			assert.Equal(t, pending, out.Commit.Refs)
			assert.True(t, out.Cleared)
			assert.False(t, out.DeadEnd)
			assert.Equal(t, RulePossibility, out.Rule)
			assert.Equal(t, 1, roller.Calls())
			assert.Empty(t, q[0].ActionGroups, "no buttons attached in the same pass")
		})
	}
}

func TestResolvePossibilityUsesThreshold(t *testing.T) {
	var seen float64
	r := New(WithRoller(RollerFunc(func(p float64) bool {
		seen = p
		return true
	})))

	_, _, err := r.Resolve(nil, []ir.PendingAction{trigger(ir.TriggerPossibility)}, nil)
	require.NoError(t, err)
	assert.Equal(t, PossibilityChance, seen)
}

func TestResolveCountTriggerAcrossPasses(t *testing.T) {
	r := New()
	st := &State{}
	pending := []ir.PendingAction{trigger(ir.TriggerCount)}

	var keys []string
	for range 4 {
		_, out, err := r.Resolve(queueOf("01_001_001"), pending, st)
		require.NoError(t, err)
		require.NotNil(t, out.Commit)
		assert.True(t, out.Cleared)
		keys = append(keys, out.Commit.Selector.Key)
	}

	assert.Equal(t, []string{KeyNotEnough, KeyNotEnough, KeyEnough, KeyEnough}, keys)
	assert.Equal(t, 4, st.TriggerCount)

	st.Reset()
	assert.Equal(t, 0, st.TriggerCount)
}

func TestResolveQTETrigger(t *testing.T) {
	pending := []ir.PendingAction{
		ir.Trigger{Name: ir.TriggerQTE, Key: "left", Label: "Dodge left"},
		ir.Trigger{Name: ir.TriggerQTE, Key: "right", Label: "Dodge right"},
	}

	tests := []struct {
		name     string
		video    string
		wantLoop bool
	}{
		{"plain video", "01_002_001", false},
		{"loop video", "01_002_002_LOOP", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := queueOf("01_001_001", tt.video)
			q[1].Loop = !tt.wantLoop

			q, out, err := New().Resolve(q, pending, nil)
			require.NoError(t, err)

			assert.Nil(t, out.Commit)
			assert.True(t, out.Cleared)
			assert.Equal(t, RuleQTE, out.Rule)
			assert.Equal(t, tt.wantLoop, q[1].Loop)
			assert.Equal(t, []ir.ActionGroup{ir.QTEGroup{
				ID:      tt.video,
				QTEType: ir.TriggerQTE,
				Actions: []ir.ActionItem{
					{Prompt: "Dodge left", Index: 0, Key: "left"},
					{Prompt: "Dodge right", Index: 1, Key: "right"},
				},
			}}, q[1].ActionGroups)
			assert.Empty(t, q[0].ActionGroups)
		})
	}
}

func TestResolveQTESlideOnEmptyQueueIsDeadEnd(t *testing.T) {
	_, out, err := New().Resolve(nil, []ir.PendingAction{trigger(ir.TriggerQTESlide)}, nil)
	require.NoError(t, err)

	assert.True(t, out.DeadEnd)
	require.NotNil(t, out.Commit)
	assert.Equal(t, ir.ByIndex(0), out.Commit.Selector)
	assert.Nil(t, out.Commit.Refs)
	assert.False(t, out.Cleared)
}

func TestResolveUnknownTriggerFallsThrough(t *testing.T) {
	for _, name := range []string{ir.TriggerQTEContinue, "mystery"} {
		t.Run(name, func(t *testing.T) {
			q, out, err := New().Resolve(queueOf("01_001_001"), []ir.PendingAction{trigger(name)}, nil)
			require.NoError(t, err)

			assert.Nil(t, out.Commit)
			assert.False(t, out.Cleared)
			assert.Equal(t, RuleButtons, out.Rule)
			assert.True(t, q[0].Loop)
			assert.Equal(t, []ir.ActionGroup{ir.UIButtonGroup{Actions: []ir.ActionItem{}}}, q[0].ActionGroups)
		})
	}
}

func TestResolveButtons(t *testing.T) {
	pending := []ir.PendingAction{
		ir.UIButton{Label: "Stay", Key: "stay"},
		trigger("mystery"),
		ir.UIButton{Label: "Run", Key: "run"},
	}

	q, out, err := New().Resolve(queueOf("01_001_001", "01_001_002"), pending, nil)
	require.NoError(t, err)

	assert.Equal(t, Outcome{Rule: RuleButtons}, out)
	assert.False(t, q[0].Loop)
	assert.True(t, q[1].Loop, "open-ended choice loops the last video")
	assert.Equal(t, []ir.ActionGroup{ir.UIButtonGroup{Actions: []ir.ActionItem{
		{Prompt: "Stay", Index: 0, Key: "stay"},
		{Prompt: "Run", Index: 1, Key: "run"},
	}}}, q[1].ActionGroups)
}

func TestResolveTimedChoice(t *testing.T) {
	pending := []ir.PendingAction{
		ir.UIButton{Label: "Talk", Key: "talk"},
		ir.UIButton{Label: ir.TimeLimitChoose, Key: "timeout"},
	}

	q, _, err := New().Resolve(queueOf("01_001_001"), pending, nil)
	require.NoError(t, err)

	assert.False(t, q[0].Loop)
	require.Len(t, q[0].ActionGroups, 1)
	group, ok := q[0].ActionGroups[0].(ir.UIButtonGroup)
	require.True(t, ok)
	require.NotNil(t, group.TimeLimitedActionIndex)
	assert.Equal(t, 1, *group.TimeLimitedActionIndex)
}

func TestResolveButtonsOnEmptyQueueIsDeadEnd(t *testing.T) {
	q, out, err := New().Resolve(nil, []ir.PendingAction{ir.UIButton{Label: "Go", Key: "go"}}, nil)
	require.NoError(t, err)

	assert.Empty(t, q)
	assert.Equal(t, RuleDeadEnd, out.Rule)
	assert.True(t, out.DeadEnd)
	require.NotNil(t, out.Commit)
	assert.Equal(t, ir.ByIndex(0), out.Commit.Selector)
}

func TestResolveRejectsNilAction(t *testing.T) {
	_, _, err := New().Resolve(queueOf("01_001_001"), []ir.PendingAction{nil}, nil)

	var unhandled *ir.UnhandledVariantError
	require.ErrorAs(t, err, &unhandled)
}
