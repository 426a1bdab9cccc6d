package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reelsync/internal/ir"
)

const minimalScenario = `
name: minimal
description: "d"
manifest: story.yaml
steps:
  - op: full_sync
assertions:
  - type: queue_videos
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, "story.yaml", s.Manifest)
	assert.Len(t, s.Steps, 1)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown field", minimalScenario + "assertion: []\n", "field assertion not found"},
		{"missing name", "description: d\nmanifest: m\nsteps: [{op: start}]\nassertions: [{type: commits}]\n", "name is required"},
		{"missing manifest", "name: n\ndescription: d\nsteps: [{op: start}]\nassertions: [{type: commits}]\n", "manifest is required"},
		{"no steps", "name: n\ndescription: d\nmanifest: m\nassertions: [{type: commits}]\n", "steps list is required"},
		{"unknown op", "name: n\ndescription: d\nmanifest: m\nsteps: [{op: fly}]\nassertions: [{type: commits}]\n", `unknown op "fly"`},
		{"commit without selector", "name: n\ndescription: d\nmanifest: m\nsteps: [{op: commit}]\nassertions: [{type: commits}]\n", "index or key is required"},
		{"rewind without id", "name: n\ndescription: d\nmanifest: m\nsteps: [{op: rewind}]\nassertions: [{type: commits}]\n", "id is required"},
		{"unknown assertion", "name: n\ndescription: d\nmanifest: m\nsteps: [{op: start}]\nassertions: [{type: vibes}]\n", `unknown assertion type "vibes"`},
		{"last_loop without loop", "name: n\ndescription: d\nmanifest: m\nsteps: [{op: start}]\nassertions: [{type: last_loop}]\n", "loop is required"},
		{"bad line", "name: n\ndescription: d\nmanifest: m\nserver: {saves: [{id: 1, lines: [\"jump x\"]}]}\nsteps: [{op: start}]\nassertions: [{type: commits}]\n", `unknown kind "jump"`},
		{"bad save id", "name: n\ndescription: d\nmanifest: m\nserver: {saves: [{id: 0}]}\nsteps: [{op: start}]\nassertions: [{type: commits}]\n", "id must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_ResolvesManifest(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/count_trigger.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "story.yaml"), s.Manifest)
}

func TestLoadScenario_MissingManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "manifest")
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		in   string
		want ir.Line
	}{
		{"start a01_a001_a001", ir.StoryletStart{Storylet: "a01_a001_a001"}},
		{"end a01_a001_a001", ir.StoryletEnd{Storylet: "a01_a001_a001"}},
		{"play 01_001_001", ir.PlayVideo{Video: "01_001_001"}},
		{"badge brave", ir.AssignsBadge{Badge: "brave"}},
		{"value trust 2", ir.ValueChanged{Key: "trust", Value: ir.Int(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLine(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	qte, err := ParseLine("qte dodge")
	require.NoError(t, err)
	call, ok := qte.(ir.FFICall)
	require.True(t, ok)
	assert.Equal(t, ir.TriggerQTEContinue, call.Name)
	arg, ok := call.Arg("qte_name")
	require.True(t, ok)
	assert.Equal(t, "dodge", arg.StringValue())

	for _, bad := range []string{"", "play", "value trust", "value trust x", "warp 01"} {
		_, err := ParseLine(bad)
		assert.Error(t, err, "line %q", bad)
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("button Stay stay")
	require.NoError(t, err)
	assert.Equal(t, ir.UIButton{Label: "Stay", Key: "stay"}, a)

	a, err = ParseAction("trigger count_trigger n not_enough")
	require.NoError(t, err)
	assert.Equal(t, ir.Trigger{Name: ir.TriggerCount, Key: "n", Label: "not_enough"}, a)

	for _, bad := range []string{"", "button Stay", "trigger a b", "wave hi"} {
		_, err := ParseAction(bad)
		assert.Error(t, err, "action %q", bad)
	}
}

func TestDescribe(t *testing.T) {
	in := ir.Instruction{
		VideoID:      "01_002_002_LOOP",
		Loop:         true,
		ActionGroups: []ir.ActionGroup{ir.QTEGroup{ID: "x"}, ir.UIButtonGroup{}},
	}
	assert.Equal(t, "01_002_002_LOOP loop +qte +ui_button", describe(in))
	assert.Equal(t, "01_001_001", describe(ir.Instruction{VideoID: "01_001_001"}))
}
