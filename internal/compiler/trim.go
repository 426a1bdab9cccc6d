package compiler

import (
	"github.com/roach88/reelsync/internal/ir"
)

// Rewind drops every instruction before the first one playing video, so
// that video becomes the head. When video is already the head, or is not
// queued at all, the queue is returned unchanged.
func Rewind(queue []ir.Instruction, video string) []ir.Instruction {
	if video == "" {
		return queue
	}
	for i, in := range queue {
		if ir.SameVideo(in.VideoID, video) {
			if i > 0 {
				return queue[i:]
			}
			return queue
		}
	}
	return queue
}

// TrimChapters truncates the queue at the first instruction whose chapter
// is past the last playable one.
func TrimChapters(queue []ir.Instruction) ([]ir.Instruction, error) {
	for i, in := range queue {
		ch, err := ir.ChapterOf(in.VideoID)
		if err != nil {
			return nil, err
		}
		if ch > ir.MaxChapter {
			return queue[:i], nil
		}
	}
	return queue, nil
}
