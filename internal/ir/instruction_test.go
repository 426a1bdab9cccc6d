package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionMarshalGroups(t *testing.T) {
	limit := 2
	in := Instruction{
		StoryletID: "a01_a001_a001",
		VideoID:    "01_001_003",
		Loop:       true,
		ActionGroups: []ActionGroup{
			EndingGroup{Kind: EndingGold, Chapter: 1},
			UIButtonGroup{
				Actions:                []ActionItem{{Prompt: "Run", Index: 0, Key: "k_run"}},
				TimeLimitedActionIndex: &limit,
			},
		},
	}

	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"storylet_id": "a01_a001_a001",
		"video_id": "01_001_003",
		"loop": true,
		"action_groups": [
			{"type": "ending", "actions": [{"prompt": "gold", "index": 1, "key": "unknown"}]},
			{"type": "ui_button", "actions": [{"prompt": "Run", "index": 0, "key": "k_run"}], "time_limited_action_index": 2}
		]
	}`, string(out))

	var back Instruction
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, in, back)
}

func TestInstructionMarshalEmptyGroups(t *testing.T) {
	out, err := json.Marshal(Instruction{StoryletID: "a01_a001_a001", VideoID: "01_001_001"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"storylet_id":"a01_a001_a001","video_id":"01_001_001","loop":false,"action_groups":[]}`, string(out))
}

func TestInstructionUnmarshalUnknownGroup(t *testing.T) {
	var in Instruction
	err := json.Unmarshal([]byte(`{"video_id":"x","action_groups":[{"type":"confetti","actions":[]}]}`), &in)

	var uv *UnhandledVariantError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "confetti", uv.Tag)
}

func TestInstructionCloneIsDeep(t *testing.T) {
	limit := 1
	in := Instruction{VideoID: "01_001_001", ActionGroups: []ActionGroup{
		UIButtonGroup{Actions: []ActionItem{{Prompt: "a"}}, TimeLimitedActionIndex: &limit},
	}}

	c := in.Clone()
	g := c.ActionGroups[0].(UIButtonGroup)
	g.Actions[0].Prompt = "changed"
	*g.TimeLimitedActionIndex = 9

	orig := in.ActionGroups[0].(UIButtonGroup)
	assert.Equal(t, "a", orig.Actions[0].Prompt)
	assert.Equal(t, 1, *orig.TimeLimitedActionIndex)
}

func TestPendingActionFields(t *testing.T) {
	b := UIButton{Label: "Run", Key: "k"}
	tr := Trigger{Name: TriggerQTE, Key: "k2", Label: "left"}

	assert.Equal(t, "Run", b.Field(1))
	assert.Equal(t, "k", b.Field(2))
	assert.Equal(t, "", b.Field(3))
	assert.Equal(t, TriggerQTE, tr.Field(1))
	assert.Equal(t, "left", tr.Field(3))
}

func TestPendingActionsUnmarshal(t *testing.T) {
	var pa PendingActions
	require.NoError(t, json.Unmarshal([]byte(`[["ui_button","Go","k1"],["ffi","possibility_trigger","k2","success"]]`), &pa))
	assert.Equal(t, PendingActions{
		UIButton{Label: "Go", Key: "k1"},
		Trigger{Name: TriggerPossibility, Key: "k2", Label: "success"},
	}, pa)

	err := json.Unmarshal([]byte(`[["vote","x"]]`), &pa)
	var uv *UnhandledVariantError
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "pending action", uv.Kind)
}

func TestSelector(t *testing.T) {
	assert.False(t, ByIndex(2).IsKey())
	assert.True(t, ByKey("enough").IsKey())
	assert.Equal(t, "index:2", ByIndex(2).String())
	assert.Equal(t, "key:enough", ByKey("enough").String())
}
