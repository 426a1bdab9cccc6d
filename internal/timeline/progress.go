package timeline

import (
	"slices"

	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
)

// FirstStorylet is the opening node of a new game.
const FirstStorylet = "a00_a001_a001"

// Progress is the per-chapter summary the UI shows next to the player.
type Progress struct {
	CurrentChapter   int      `json:"current_chapter"`
	IsNewGame        bool     `json:"is_new_game"`
	VisitedStorylets []string `json:"visited_storylets"`
	SelectedActions  []string `json:"selected_actions"`
	RewindableVideos []string `json:"rewindable_videos"`
	VideosOnTimeline []string `json:"videos_on_timeline"`

	ChapterUnlocked [ir.ChapterCount]bool               `json:"chapter_unlocked"`
	ChapterProgress [ir.ChapterCount]float64            `json:"chapter_progress"`
	UnplayedVideos  [ir.ChapterCount][]string           `json:"unplayed_videos"`
	LastVideo       [ir.ChapterCount]string             `json:"last_video"`
	Values          [ir.ChapterCount]map[string]float64 `json:"values"`
}

// ComputeProgress derives the progress view from the held save and the
// current storylet. save may be nil.
func ComputeProgress(save *ir.Save, currentStorylet string, idx *graph.Index) Progress {
	var p Progress
	for ch := range p.Values {
		p.Values[ch] = map[string]float64{}
	}

	p.IsNewGame = save == nil || currentStorylet == FirstStorylet
	if currentStorylet != "" {
		if ch, err := ir.ChapterOf(currentStorylet); err == nil {
			p.CurrentChapter = min(ch, ir.MaxChapter)
		}
	}
	if save == nil {
		return p
	}

	p.VisitedStorylets = slices.Clone(save.VisitedStorylets)
	p.SelectedActions = slices.Clone(save.SelectedActions)
	p.RewindableVideos = RewindableVideos(save, idx)
	p.VideosOnTimeline = VideosOnTimeline(save.Timeline.Lines)

	rewindable := make(map[string]struct{}, len(p.RewindableVideos))
	for _, v := range p.RewindableVideos {
		rewindable[ir.ToVideoForm(v)] = struct{}{}
		if ch, err := ir.ChapterOf(v); err == nil && ch <= ir.MaxChapter {
			p.ChapterUnlocked[ch] = true
		}
	}

	visited := make(map[string]struct{}, len(save.VisitedStorylets))
	for _, s := range save.VisitedStorylets {
		visited[ir.ToStoryletForm(s)] = struct{}{}
	}

	storylets := idx.StoryletsByChapter()
	videos := idx.VideosByChapter()
	for ch := 0; ch < ir.ChapterCount; ch++ {
		p.ChapterProgress[ch] = ratio(countIn(storylets[ch], visited), len(storylets[ch]))
		for _, v := range videos[ch] {
			if _, ok := rewindable[v]; !ok {
				p.UnplayedVideos[ch] = append(p.UnplayedVideos[ch], v)
			}
		}
	}

	for _, l := range save.Timeline.Lines {
		if pv, ok := l.(ir.PlayVideo); ok {
			if ch, err := ir.ChapterOf(pv.Video); err == nil && ch <= ir.MaxChapter {
				p.LastVideo[ch] = pv.Video
			}
		}
	}

	p.Values = ValueTotals(save.Timeline.Lines)
	return p
}

// RewindableVideos lists the videos of every visited storylet.
func RewindableVideos(save *ir.Save, idx *graph.Index) []string {
	var out []string
	for _, s := range save.VisitedStorylets {
		vids, _ := idx.VideosOfStorylet(s)
		out = append(out, vids...)
	}
	return out
}

// VideosOnTimeline lists the played videos in log order.
func VideosOnTimeline(lines []ir.Line) []string {
	var out []string
	for _, l := range lines {
		if pv, ok := l.(ir.PlayVideo); ok {
			out = append(out, pv.Video)
		}
	}
	return out
}

// ValueTotals sums numeric value_changed deltas per chapter. A delta is
// attributed to the chapter of the latest storylet_start before it; deltas
// before any storylet_start are ignored.
func ValueTotals(lines []ir.Line) [ir.ChapterCount]map[string]float64 {
	var totals [ir.ChapterCount]map[string]float64
	for ch := range totals {
		totals[ch] = map[string]float64{}
	}

	chapter := -1
	for _, l := range lines {
		switch l := l.(type) {
		case ir.StoryletStart:
			ch, err := ir.ChapterOf(l.Storylet)
			if err != nil {
				chapter = -1
				continue
			}
			chapter = ch
		case ir.ValueChanged:
			if chapter < 0 || chapter > ir.MaxChapter {
				continue
			}
			if n, ok := ir.Number(l.Value); ok {
				totals[chapter][l.Key] += n
			}
		}
	}
	return totals
}

func countIn(ids []string, set map[string]struct{}) int {
	n := 0
	for _, id := range ids {
		if _, ok := set[id]; ok {
			n++
		}
	}
	return n
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return max(0, min(1, float64(n)/float64(total)))
}
