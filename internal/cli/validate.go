package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reelsync/internal/graph"
	"github.com/roach88/reelsync/internal/ir"
)

// ValidateResult summarises a valid manifest.
type ValidateResult struct {
	Storylets int            `json:"storylets"`
	Videos    int            `json:"videos"`
	Endings   int            `json:"endings"`
	Chapters  []ChapterCount `json:"chapters"`
}

// ChapterCount is the node count of one non-empty chapter.
type ChapterCount struct {
	Chapter   int `json:"chapter"`
	Storylets int `json:"storylets"`
	Videos    int `json:"videos"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Validate a content manifest",
		Long: `Load a content manifest and check it against the story graph rules.

All problems are reported, not just the first.

Examples:
  reelsync validate story.yaml
  reelsync validate story.cue --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config.Manifest
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	m, err := LoadManifest(path)
	if err != nil {
		return failLoad(formatter, err)
	}

	if problems := graph.Validate(m); len(problems) > 0 {
		if !formatter.JSON() {
			fmt.Fprintf(formatter.Writer, "✗ %d %s found:\n\n", len(problems), plural(len(problems), "problem", "problems"))
			for _, p := range problems {
				fmt.Fprintf(formatter.Writer, "  %s\n", p.Error())
			}
			fmt.Fprintln(formatter.Writer)
		}
		return formatter.Fail(ExitFailure, ErrCodeManifest, fmt.Sprintf("%d validation %s", len(problems), plural(len(problems), "error", "errors")), problems)
	}

	idx, err := graph.Build(m)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeManifest, err.Error(), nil)
	}

	result := &ValidateResult{
		Storylets: len(idx.Storylets()),
		Videos:    len(idx.Videos()),
		Endings:   len(m.Endings),
		Chapters:  []ChapterCount{},
	}
	storylets := idx.StoryletsByChapter()
	videos := idx.VideosByChapter()
	for ch := range ir.ChapterCount {
		if len(storylets[ch]) == 0 && len(videos[ch]) == 0 {
			continue
		}
		result.Chapters = append(result.Chapters, ChapterCount{Chapter: ch, Storylets: len(storylets[ch]), Videos: len(videos[ch])})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Manifest valid: %d storylet(s), %d video(s), %d ending(s)\n",
		result.Storylets, result.Videos, result.Endings)
	for _, c := range result.Chapters {
		fmt.Fprintf(formatter.Writer, "  chapter %02d: %d storylet(s), %d video(s)\n", c.Chapter, c.Storylets, c.Videos)
	}
	return nil
}
