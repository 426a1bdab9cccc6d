package ir

import "slices"

// Save is a server-side save snapshot. It is replaced wholesale on every
// successful sync; the only local mutation is clearing Timeline.Actions once
// they have been resolved.
type Save struct {
	ID               int64    `json:"id"`
	Timeline         Timeline `json:"timeline"`
	VisitedStorylets []string `json:"visited_storylets"`
	SelectedActions  []string `json:"selected_actions"`
	CreatedAt        string   `json:"created_at,omitempty"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
}

// Timeline is the event log of a save plus the choices it is waiting on.
type Timeline struct {
	Lines   Lines          `json:"lines"`
	Actions PendingActions `json:"actions"`
	Record  Array          `json:"record,omitempty"`
}

// SaveSummary is one row of a save listing.
type SaveSummary struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Clone returns a copy of s that shares no mutable slices with it. Lines and
// actions are immutable values and are copied shallowly.
func (s *Save) Clone() *Save {
	if s == nil {
		return nil
	}
	out := *s
	out.Timeline.Lines = slices.Clone(s.Timeline.Lines)
	out.Timeline.Actions = slices.Clone(s.Timeline.Actions)
	if s.Timeline.Record != nil {
		out.Timeline.Record = CloneValue(s.Timeline.Record).(Array)
	}
	out.VisitedStorylets = slices.Clone(s.VisitedStorylets)
	out.SelectedActions = slices.Clone(s.SelectedActions)
	return &out
}

// LastStorylet returns the node of the last storylet start or end line.
func (s *Save) LastStorylet() (string, bool) {
	for i := len(s.Timeline.Lines) - 1; i >= 0; i-- {
		switch l := s.Timeline.Lines[i].(type) {
		case StoryletStart:
			return l.Storylet, true
		case StoryletEnd:
			return l.Storylet, true
		}
	}
	return "", false
}

// LastVideo returns the video of the last play_video line.
func (s *Save) LastVideo() (string, bool) {
	for i := len(s.Timeline.Lines) - 1; i >= 0; i-- {
		if l, ok := s.Timeline.Lines[i].(PlayVideo); ok {
			return l.Video, true
		}
	}
	return "", false
}

// PlayCount counts the play_video lines for video.
func (s *Save) PlayCount(video string) int {
	n := 0
	for _, l := range s.Timeline.Lines {
		if pv, ok := l.(PlayVideo); ok && pv.Video == video {
			n++
		}
	}
	return n
}
