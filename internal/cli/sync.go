package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/reelsync/internal/engine"
	"github.com/roach88/reelsync/internal/ir"
	"github.com/roach88/reelsync/internal/service"
	"github.com/roach88/reelsync/internal/store"
	"github.com/roach88/reelsync/internal/timeline"
)

// ServiceOptions are the flags of commands that talk to the save service.
type ServiceOptions struct {
	Server   string
	Session  string
	Manifest string
	Database string
}

func (o *ServiceOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Server, "server", "", "save service base URL (or "+EnvServer+")")
	cmd.Flags().StringVar(&o.Session, "session", "", "session cookie value (or "+EnvSession+")")
	cmd.Flags().StringVarP(&o.Manifest, "manifest", "m", "", "content manifest (or "+EnvManifest+")")
	cmd.Flags().StringVar(&o.Database, "db", "", "journal database path, optional (or "+EnvDB+")")
}

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	ServiceOptions
	NewSave bool
}

// SyncResult is the engine state after a sync.
type SyncResult struct {
	engine.View
	Progress timeline.Progress `json:"progress"`
	Session  string            `json:"session,omitempty"`
}

// session is a live engine wired to the service and, optionally, the
// journal.
type session struct {
	engine *engine.Engine
	client *service.Client
	store  *store.Store
}

func (s *session) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// openSession builds an engine from flags and config. Errors are
// LoadErrors.
func openSession(ctx context.Context, opts *RootOptions, so *ServiceOptions, logger *slog.Logger, extra ...engine.Option) (*session, error) {
	server := pick(so.Server, opts.Config.Server)
	if server == "" {
		return nil, &LoadError{Code: ErrCodeService, Message: "no save service given (use --server or " + EnvServer + ")"}
	}

	idx, err := LoadIndex(pick(so.Manifest, opts.Config.Manifest))
	if err != nil {
		return nil, err
	}

	s := &session{client: service.NewClient(server, service.WithSession(pick(so.Session, opts.Config.Session)))}
	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMaxCommitDepth(opts.Config.MaxCommitDepth),
	}

	if db := pick(so.Database, opts.Config.DB); db != "" {
		st, err := store.Open(db)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeStore, Message: fmt.Sprintf("open journal: %v", err)}
		}
		last, err := st.LastSeq(ctx)
		if err != nil {
			st.Close()
			return nil, &LoadError{Code: ErrCodeStore, Message: fmt.Sprintf("read journal: %v", err)}
		}
		s.store = st
		engineOpts = append(engineOpts, engine.WithJournal(st), engine.WithClock(engine.NewClockAt(last)))
	}

	s.engine = engine.New(s.client, idx, append(engineOpts, extra...)...)
	return s, nil
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a full sync against the save service",
		Long: `Fetch the latest save from the save service and compile it into a
playback queue, committing triggers and dead ends along the way.

With --db every installed pass is journaled for replay and trace.

Examples:
  reelsync sync --server https://saves.example --session abc --manifest story.yaml
  reelsync sync --db ./reelsync.db --new-save --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	opts.ServiceOptions.register(cmd)
	cmd.Flags().BoolVar(&opts.NewSave, "new-save", false, "create a fresh save before syncing")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := openSession(ctx, opts.RootOptions, &opts.ServiceOptions, opts.logger())
	if err != nil {
		return failLoad(formatter, err)
	}
	defer s.Close()

	e := s.engine
	if opts.NewSave {
		if err := e.ForceNewSave(ctx); err != nil {
			return failSync(formatter, err)
		}
	}
	if err := e.FullSync(ctx); err != nil {
		return failSync(formatter, err)
	}

	result := &SyncResult{
		View:     e.View(),
		Progress: e.Progress(),
		Session:  s.client.Session(),
	}
	if result.Queue == nil {
		result.Queue = []ir.Instruction{}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Synced save %d: %d %s\n\n",
		result.SaveID, len(result.Queue), plural(len(result.Queue), "instruction", "instructions"))
	writeQueue(formatter.Writer, result.Queue)
	if result.CurrentStorylet != "" {
		fmt.Fprintf(formatter.Writer, "\nResuming at %s\n", result.CurrentStorylet)
	}
	return nil
}

// failSync maps engine and service errors to CLI errors.
func failSync(f *OutputFormatter, err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return f.Fail(ExitCommandError, ErrCodeUnauthorized, "session rejected by the save service", nil)
	case engine.CodeOf(err) != engine.ErrCodeInternal:
		return f.Fail(ExitFailure, string(engine.CodeOf(err)), err.Error(), nil)
	default:
		return f.Fail(ExitCommandError, ErrCodeService, err.Error(), nil)
	}
}
