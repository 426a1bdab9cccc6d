package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reelsync/internal/timeline"
)

// DiffResult summarises a timeline delta.
type DiffResult struct {
	Kind       timeline.Kind `json:"kind"`
	Divergence int           `json:"divergence"`
	RolledBack int           `json:"rolled_back"`
	Appended   int           `json:"appended"`
	FullReplay bool          `json:"full_replay"`
}

func newDiffResult(d timeline.Delta) DiffResult {
	return DiffResult{
		Kind:       d.Kind(),
		Divergence: d.Divergence,
		RolledBack: len(d.RolledBack),
		Appended:   len(d.Appended),
		FullReplay: d.NeedsFullReplay(),
	}
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <prev.json> <next.json>",
		Short: "Compare the timelines of two save snapshots",
		Long: `Report where two save timelines diverge and how many lines were
rolled back and appended.

Examples:
  reelsync diff prev.json next.json
  reelsync diff prev.json next.json --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runDiff(opts *RootOptions, prevPath, nextPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	prev, err := LoadSave(prevPath)
	if err != nil {
		return failLoad(formatter, err)
	}
	next, err := LoadSave(nextPath)
	if err != nil {
		return failLoad(formatter, err)
	}

	result := newDiffResult(timeline.Diff(prev.Timeline.Lines, next.Timeline.Lines, true))
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s: divergence %d, rolled back %d, appended %d\n",
		result.Kind, result.Divergence, result.RolledBack, result.Appended)
	if result.FullReplay {
		fmt.Fprintln(formatter.Writer, "A sync would rebuild the queue from the full timeline")
	}
	return nil
}
