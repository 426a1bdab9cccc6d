package graph

import (
	"fmt"
	"strings"

	"github.com/roach88/reelsync/internal/ir"
)

// Manifest validation error codes (E100-E119).
const (
	ErrEmptyStoryletID     = "E101" // storylet id is empty
	ErrDuplicateStorylet   = "E102" // storylet listed twice
	ErrDuplicateVideo      = "E103" // video belongs to more than one storylet
	ErrUnknownEndingKind   = "E104" // ending kind is not gold/silver/bronze
	ErrMalformedStoryletID = "E105" // storylet id has no chapter digits
	ErrUnknownVideo        = "E106" // marker set names a video no storylet has
	ErrEmptyVideoID        = "E107" // video id is empty
)

// ValidationError is one manifest problem.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a manifest against the graph rules. It returns all
// problems found rather than stopping at the first.
func Validate(m *Manifest) []ValidationError {
	var errs []ValidationError

	storylets := make(map[string]int, len(m.Storylets))
	owner := make(map[string]string)

	for i, s := range m.Storylets {
		field := fmt.Sprintf("storylets[%d]", i)
		if strings.TrimSpace(s.ID) == "" {
			errs = append(errs, ValidationError{Field: field + ".id", Message: "storylet id is required", Code: ErrEmptyStoryletID})
			continue
		}
		key := ir.ToStoryletForm(s.ID)
		if prev, dup := storylets[key]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("storylet %q already defined at storylets[%d]", s.ID, prev),
				Code:    ErrDuplicateStorylet,
			})
			continue
		}
		storylets[key] = i
		if _, err := ir.ChapterOf(s.ID); err != nil {
			errs = append(errs, ValidationError{Field: field + ".id", Message: err.Error(), Code: ErrMalformedStoryletID})
		}

		for j, v := range s.Videos {
			vfield := fmt.Sprintf("%s.videos[%d]", field, j)
			if strings.TrimSpace(v) == "" {
				errs = append(errs, ValidationError{Field: vfield, Message: "video id is required", Code: ErrEmptyVideoID})
				continue
			}
			vkey := ir.ToVideoForm(v)
			if other, dup := owner[vkey]; dup {
				errs = append(errs, ValidationError{
					Field:   vfield,
					Message: fmt.Sprintf("video %q already belongs to storylet %q", v, other),
					Code:    ErrDuplicateVideo,
				})
				continue
			}
			owner[vkey] = key
		}
	}

	for _, id := range sortedKeys(m.Endings) {
		if kind := m.Endings[id]; !kind.Valid() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("endings[%s]", id),
				Message: fmt.Sprintf("unknown ending kind %q", kind),
				Code:    ErrUnknownEndingKind,
			})
		}
	}

	errs = append(errs, validateMarkers("chapter_ending_videos", m.ChapterEndingVideos, owner)...)
	errs = append(errs, validateMarkers("value_change_videos", m.ValueChangeVideos, owner)...)
	return errs
}

func validateMarkers(field string, videos []string, owner map[string]string) []ValidationError {
	var errs []ValidationError
	for i, v := range videos {
		if _, ok := owner[ir.ToVideoForm(v)]; !ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("video %q is not in any storylet", v),
				Code:    ErrUnknownVideo,
			})
		}
	}
	return errs
}
