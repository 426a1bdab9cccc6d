package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/reelsync/internal/ir"
)

// ErrDriverStopped is returned for commands submitted to, or still queued
// in, a stopped Driver.
var ErrDriverStopped = errors.New("driver stopped")

// CommandKind names a driver command.
type CommandKind string

const (
	CmdView            CommandKind = "view"
	CmdStart           CommandKind = "start"
	CmdAdvance         CommandKind = "advance"
	CmdCommit          CommandKind = "commit"
	CmdRewind          CommandKind = "rewind"
	CmdFullSync        CommandKind = "full_sync"
	CmdSpeculativeSync CommandKind = "speculative_sync"
	CmdCopy            CommandKind = "copy"
	CmdForceNew        CommandKind = "force_new"
	CmdReset           CommandKind = "reset"
)

// Command is one engine operation. Selector is used by CmdCommit, ID by
// CmdRewind and SaveID by CmdCopy.
type Command struct {
	Kind     CommandKind
	Selector ir.Selector
	ID       string
	SaveID   int64
}

// Result is the engine view after a command, or its error.
type Result struct {
	View View
	Err  error
}

// Driver runs commands against one Engine on a single goroutine, in
// submission order.
//
// Thread-safety model:
//   - Submit(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// The Engine must not be used directly while Run is active.
type Driver struct {
	engine *Engine
	queue  *commandQueue
}

// NewDriver creates a driver for e.
func NewDriver(e *Engine) *Driver {
	return &Driver{engine: e, queue: newCommandQueue()}
}

// Submit queues cmd and waits for its result. ctx bounds both the wait and
// the command's round-trips.
func (d *Driver) Submit(ctx context.Context, cmd Command) (View, error) {
	req := request{ctx: ctx, cmd: cmd, done: make(chan Result, 1)}
	if !d.queue.Enqueue(req) {
		return View{}, ErrDriverStopped
	}

	select {
	case r := <-req.done:
		return r.View, r.Err
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

// Run drains the command queue until ctx is cancelled or Stop is called.
// Commands still queued at that point fail with ErrDriverStopped.
//
// A failing command is logged and answered with its error; the loop keeps
// going.
func (d *Driver) Run(ctx context.Context) error {
	log := d.engine.logger
	log.Info("driver starting")

	for {
		req, ok := d.queue.TryDequeue()
		if ok {
			req.done <- d.execute(req)
			continue
		}

		select {
		case <-ctx.Done():
			log.Info("driver stopping: context cancelled")
			d.fail(d.queue.Close())
			return ctx.Err()

		case <-d.queue.Wait():
			// The signal channel closes when the queue is closed, which
			// fires this case immediately.
			if d.stopped() {
				log.Info("driver stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue, which makes Run return.
func (d *Driver) Stop() {
	d.fail(d.queue.Close())
}

func (d *Driver) stopped() bool {
	d.queue.mu.Lock()
	defer d.queue.mu.Unlock()
	return d.queue.closed
}

func (d *Driver) fail(pending []request) {
	for _, r := range pending {
		r.done <- Result{Err: ErrDriverStopped}
	}
}

// execute runs one command. Called only from Run.
func (d *Driver) execute(req request) Result {
	e := d.engine
	var err error

	switch req.cmd.Kind {
	case CmdView:
	case CmdStart:
		err = e.Start(req.ctx)
	case CmdAdvance:
		e.Advance()
	case CmdCommit:
		err = e.CommitAction(req.ctx, req.cmd.Selector)
	case CmdRewind:
		err = e.RewindTo(req.ctx, req.cmd.ID)
	case CmdFullSync:
		err = e.FullSync(req.ctx)
	case CmdSpeculativeSync:
		err = e.SpeculativeSync(req.ctx)
	case CmdCopy:
		err = e.CopyAndSwitch(req.ctx, req.cmd.SaveID)
	case CmdForceNew:
		err = e.ForceNewSave(req.ctx)
	case CmdReset:
		e.ResetAll()
	default:
		err = fmt.Errorf("unknown command %q", req.cmd.Kind)
	}

	if err != nil {
		e.logger.Error("command failed",
			"command", req.cmd.Kind,
			"code", CodeOf(err),
			"error", err)
	}
	return Result{View: e.View(), Err: err}
}
