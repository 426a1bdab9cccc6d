package testutil

import (
	"testing"

	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
)

// FixtureManifest is a small story used across package tests:
//
//	chapter 0: a00_a001_a001 [00_001_001 00_001_002]
//	chapter 1: a01_a001_a001 [01_001_001 01_001_002]
//	           a01_a002_a001 [01_002_001 01_002_002_LOOP]
//	           a01_a009_a001 [01_009_001]            chapter ending
//	           a01_a010_a001 [01_010_001]            gold ending
//	chapter 2: a02_a001_a001 [02_001_001]
//	chapter 8: a08_a001_a001 [08_001_001]            beyond the playable range
func FixtureManifest() *graph.Manifest {
	return &graph.Manifest{
		Storylets: []graph.StoryletEntry{
			{ID: "a00_a001_a001", Videos: []string{"00_001_001", "00_001_002"}},
			{ID: "a01_a001_a001", Videos: []string{"01_001_001", "01_001_002"}},
			{ID: "a01_a002_a001", Videos: []string{"01_002_001", "01_002_002_LOOP"}},
			{ID: "a01_a009_a001", Videos: []string{"01_009_001"}},
			{ID: "a01_a010_a001", Videos: []string{"01_010_001"}},
			{ID: "a02_a001_a001", Videos: []string{"02_001_001"}},
			{ID: "a08_a001_a001", Videos: []string{"08_001_001"}},
		},
		Endings:             map[string]ir.EndingKind{"a01_a010_a001": ir.EndingGold},
		ChapterEndingVideos: []string{"01_009_001"},
		ValueChangeVideos:   []string{"01_001_002"},
	}
}

// FixtureIndex builds the index for FixtureManifest.
func FixtureIndex(t testing.TB) *graph.Index {
	t.Helper()
	idx, err := graph.Build(FixtureManifest())
	if err != nil {
		t.Fatalf("build fixture index: %v", err)
	}
	return idx
}

// NewSave builds a save snapshot with the given lines.
func NewSave(id int64, lines ...ir.Line) *ir.Save {
	return &ir.Save{ID: id, Timeline: ir.Timeline{Lines: lines}}
}

// WithActions sets the pending actions of s and returns it.
func WithActions(s *ir.Save, actions ...ir.PendingAction) *ir.Save {
	s.Timeline.Actions = actions
	return s
}

// WithVisited sets the visited storylets of s and returns it.
func WithVisited(s *ir.Save, storylets ...string) *ir.Save {
	s.VisitedStorylets = storylets
	return s
}

// Start is shorthand for a storylet_start line.
func Start(id string) ir.Line { return ir.StoryletStart{Storylet: id} }

// End is shorthand for a storylet_end line.
func End(id string) ir.Line { return ir.StoryletEnd{Storylet: id} }

// Play is shorthand for a play_video line.
func Play(video string) ir.Line { return ir.PlayVideo{Video: video} }

// QTEContinue is shorthand for an ffi qte_continue line naming qte.
func QTEContinue(qte string) ir.Line {
	return ir.FFICall{Name: ir.TriggerQTEContinue, Args: []ir.FFIArg{
		{Identifier: "qte_name", Category: "string", ValueString: &qte},
	}}
}
