package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/reelsync/internal/api"
	"github.com/roach88/reelsync/internal/engine"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ServiceOptions
	Addr   string
	NoSync bool
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live websocket API over a synced engine",
		Long: `Run a full sync, then serve the engine over a websocket on /ws.

Every connected client receives the current state on connect and a push
after each change. Clients send commands (start, advance, commit, rewind,
sync, ...) which run one at a time in arrival order.

Examples:
  reelsync serve --server https://saves.example --manifest story.yaml
  reelsync serve --addr :9000 --db ./reelsync.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	opts.ServiceOptions.register(cmd)
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (or "+EnvAddr+", default :8080)")
	cmd.Flags().BoolVar(&opts.NoSync, "no-sync", false, "skip the initial full sync")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := opts.logger()
	hub := api.NewHub()

	s, err := openSession(ctx, opts.RootOptions, &opts.ServiceOptions, logger, engine.WithObserver(hub.Broadcast))
	if err != nil {
		return failLoad(formatter, err)
	}
	defer s.Close()

	driver := engine.NewDriver(s.engine)
	done := make(chan error, 1)
	go func() { done <- driver.Run(ctx) }()
	defer func() {
		driver.Stop()
		<-done
	}()

	if !opts.NoSync {
		if _, err := driver.Submit(ctx, engine.Command{Kind: engine.CmdFullSync}); err != nil {
			return failSync(formatter, err)
		}
	}

	addr := pick(opts.Addr, opts.Config.Addr)
	formatter.VerboseLog("Serving on %s", addr)
	if err := api.ListenAndServe(ctx, addr, api.NewHandler(driver, hub, logger), logger); err != nil && !errors.Is(err, context.Canceled) {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("serve: %v", err), nil)
	}
	return nil
}
