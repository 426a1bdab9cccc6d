package graph

import (
	"errors"
	"slices"
	"sort"

	"github.com/roach88/reelsync/internal/ir"
)

// InvalidManifestError wraps the problems that stopped Build.
type InvalidManifestError struct {
	Problems []ValidationError
}

func (e *InvalidManifestError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid manifest: " + e.Problems[0].Error()
	}
	return errors.Join(problemErrors(e.Problems)...).Error()
}

func problemErrors(ps []ValidationError) []error {
	out := make([]error, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out
}

// Index answers story-graph lookups. It is immutable once built and safe
// for concurrent reads. Every lookup accepts either identifier form.
type Index struct {
	storylets     []string            // storylet form, manifest order
	videos        map[string][]string // storylet form -> video form
	storyletOf    map[string]string   // video form -> storylet form
	endings       map[string]ir.EndingKind
	chapterEnding map[string]struct{}
	valueChange   map[string]struct{}

	storyletsByChapter [ir.ChapterCount][]string
	videosByChapter    [ir.ChapterCount][]string
}

// Build validates m and indexes it.
func Build(m *Manifest) (*Index, error) {
	if problems := Validate(m); len(problems) > 0 {
		return nil, &InvalidManifestError{Problems: problems}
	}

	idx := &Index{
		videos:        make(map[string][]string, len(m.Storylets)),
		storyletOf:    make(map[string]string),
		endings:       make(map[string]ir.EndingKind, len(m.Endings)),
		chapterEnding: toSet(m.ChapterEndingVideos),
		valueChange:   toSet(m.ValueChangeVideos),
	}

	for _, s := range m.Storylets {
		key := ir.ToStoryletForm(s.ID)
		vids := make([]string, len(s.Videos))
		for i, v := range s.Videos {
			vids[i] = ir.ToVideoForm(v)
			idx.storyletOf[vids[i]] = key
		}
		idx.storylets = append(idx.storylets, key)
		idx.videos[key] = vids

		ch := ir.MustChapterOf(key)
		if ch > ir.MaxChapter {
			continue
		}
		idx.storyletsByChapter[ch] = append(idx.storyletsByChapter[ch], key)
		idx.videosByChapter[ch] = append(idx.videosByChapter[ch], vids...)
	}

	for id, kind := range m.Endings {
		idx.endings[ir.ToStoryletForm(id)] = kind
	}
	return idx, nil
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[ir.ToVideoForm(id)] = struct{}{}
	}
	return set
}

// VideosOfStorylet returns the ordered videos of a storylet.
func (idx *Index) VideosOfStorylet(id string) ([]string, bool) {
	v, ok := idx.videos[ir.ToStoryletForm(id)]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// StoryletOfVideo returns the storylet that owns video.
func (idx *Index) StoryletOfVideo(video string) (string, bool) {
	s, ok := idx.storyletOf[ir.ToVideoForm(video)]
	return s, ok
}

// HasStorylet reports whether id names a known storylet.
func (idx *Index) HasStorylet(id string) bool {
	_, ok := idx.videos[ir.ToStoryletForm(id)]
	return ok
}

// IsChapterEnding reports whether video closes a chapter.
func (idx *Index) IsChapterEnding(video string) bool {
	_, ok := idx.chapterEnding[ir.ToVideoForm(video)]
	return ok
}

// HasValueChanges reports whether video applies value deltas.
func (idx *Index) HasValueChanges(video string) bool {
	_, ok := idx.valueChange[ir.ToVideoForm(video)]
	return ok
}

// EndingKind returns the ending awarded by video. Endings are keyed by the
// storylet form of the video id.
func (idx *Index) EndingKind(video string) (ir.EndingKind, bool) {
	k, ok := idx.endings[ir.ToStoryletForm(video)]
	return k, ok
}

// Storylets lists every storylet in manifest order.
func (idx *Index) Storylets() []string {
	return slices.Clone(idx.storylets)
}

// Videos lists every video, grouped by storylet in manifest order.
func (idx *Index) Videos() []string {
	var out []string
	for _, s := range idx.storylets {
		out = append(out, idx.videos[s]...)
	}
	return out
}

// StoryletsByChapter groups playable storylets by chapter.
func (idx *Index) StoryletsByChapter() [ir.ChapterCount][]string {
	var out [ir.ChapterCount][]string
	for i, s := range idx.storyletsByChapter {
		out[i] = slices.Clone(s)
	}
	return out
}

// VideosByChapter groups playable videos by chapter.
func (idx *Index) VideosByChapter() [ir.ChapterCount][]string {
	var out [ir.ChapterCount][]string
	for i, v := range idx.videosByChapter {
		out[i] = slices.Clone(v)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
