package ir

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	// MaxChapter is the last playable chapter.
	MaxChapter = 7

	// ChapterCount is the number of playable chapters (0..MaxChapter).
	ChapterCount = MaxChapter + 1

	// segmentMarker prefixes every segment of the storylet form.
	segmentMarker = "a"
)

// MalformedIDError is returned when an identifier's first segment carries no
// chapter digits.
type MalformedIDError struct {
	ID string
}

func (e *MalformedIDError) Error() string {
	return fmt.Sprintf("malformed story identifier %q: first segment has no chapter digits", e.ID)
}

// ToStoryletForm converts an identifier in either encoding to the storylet
// form: lower-case segments, each prefixed with the marker letter.
//
//	ToStoryletForm("01_002_003") == "a01_a002_a003"
//
// The conversion is idempotent.
func ToStoryletForm(id string) string {
	segs := strings.Split(id, "_")
	for i, s := range segs {
		segs[i] = segmentMarker + strings.TrimPrefix(strings.ToLower(s), segmentMarker)
	}
	return strings.Join(segs, "_")
}

// ToVideoForm converts an identifier in either encoding to the video form:
// upper-case segments with the marker letter removed.
//
//	ToVideoForm("a01_a002_a003") == "01_002_003"
//
// The conversion is idempotent.
func ToVideoForm(id string) string {
	segs := strings.Split(id, "_")
	for i, s := range segs {
		segs[i] = strings.ToUpper(strings.TrimPrefix(strings.ToLower(s), segmentMarker))
	}
	return strings.Join(segs, "_")
}

// ChapterOf returns the chapter number encoded in the first segment of id.
func ChapterOf(id string) (int, error) {
	first, _, _ := strings.Cut(id, "_")
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, first)
	if digits == "" {
		return 0, &MalformedIDError{ID: id}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, &MalformedIDError{ID: id}
	}
	return n, nil
}

// MustChapterOf is like ChapterOf but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustChapterOf(id string) int {
	n, err := ChapterOf(id)
	if err != nil {
		panic(err)
	}
	return n
}

// SameVideo reports whether a and b name the same video in any encoding.
func SameVideo(a, b string) bool {
	return ToVideoForm(a) == ToVideoForm(b)
}
