package harness

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/reelsync/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEntry // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, entry := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s calls=%v queue=%v", entry.Step, entry.Op, entry.Calls, entry.Queue)
		if entry.Error != "" {
			fmt.Fprintf(&buf, " error=%s", entry.Error)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages, in assertion order.
func EvaluateAssertions(result *Result, h *Harness, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, h, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, h *Harness, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: result.Trace}
	}
	queue := h.engine.Queue()

	switch a.Type {
	case AssertQueueVideos:
		got := ir.QueueVideos(queue)
		if !slices.Equal(got, a.Videos) {
			return fail(fmt.Sprintf("%v", a.Videos), fmt.Sprintf("%v", got))
		}

	case AssertLastLoop:
		if len(queue) == 0 {
			return fail(fmt.Sprintf("loop=%t", *a.Loop), "empty queue")
		}
		if got := queue[len(queue)-1].Loop; got != *a.Loop {
			return fail(fmt.Sprintf("loop=%t", *a.Loop), fmt.Sprintf("loop=%t", got))
		}

	case AssertGroupTypes:
		var got []string
		if len(queue) > 0 {
			for _, g := range queue[len(queue)-1].ActionGroups {
				got = append(got, g.GroupType())
			}
		}
		if !slices.Equal(got, a.Groups) {
			return fail(fmt.Sprintf("%v", a.Groups), fmt.Sprintf("%v", got))
		}

	case AssertCommits:
		var got []int
		for _, c := range h.svc.CallsTo("act") {
			n, err := strconv.Atoi(c.Arg)
			if err != nil {
				return fail(fmt.Sprintf("%v", a.Indices), fmt.Sprintf("unparsable act index %q", c.Arg))
			}
			got = append(got, n)
		}
		if !slices.Equal(got, a.Indices) {
			return fail(fmt.Sprintf("%v", a.Indices), fmt.Sprintf("%v", got))
		}

	case AssertCursor:
		got := string(h.engine.CursorState())
		if got != a.Cursor {
			return fail("cursor "+a.Cursor, "cursor "+got)
		}
		if a.Video != "" && h.engine.CurrentVideo() != a.Video {
			return fail("current video "+a.Video, "current video "+h.engine.CurrentVideo())
		}

	case AssertTriggerCount:
		if got := h.engine.TriggerCount(); got != *a.Count {
			return fail(strconv.Itoa(*a.Count), strconv.Itoa(got))
		}

	case AssertError:
		step := *a.Step
		if step < 0 || step >= len(result.Trace) {
			return fail(fmt.Sprintf("step %d", step), fmt.Sprintf("%d steps ran", len(result.Trace)))
		}
		if got := result.Trace[step].Error; got != a.Code {
			return fail(fmt.Sprintf("step %d error %q", step, a.Code), fmt.Sprintf("error %q", got))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
