package api

import (
	"fmt"

	"github.com/roach88/reelsync/internal/engine"
	"github.com/roach88/reelsync/internal/ir"
)

// Server message types.
const (
	TypeState = "state"
	TypeError = "error"
)

// CodeBadRequest is the error code for a client message that could not be
// turned into a command.
const CodeBadRequest = "BAD_REQUEST"

// Client ops.
const (
	OpView            = "view"
	OpStart           = "start"
	OpAdvance         = "advance"
	OpCommit          = "commit"
	OpRewind          = "rewind"
	OpSync            = "sync"
	OpSpeculativeSync = "speculative_sync"
	OpCopy            = "copy"
	OpNewSave         = "new_save"
	OpReset           = "reset"
)

// ClientMessage is a command sent by a frontend.
type ClientMessage struct {
	Op     string `json:"op" jsonschema:"enum=view,enum=start,enum=advance,enum=commit,enum=rewind,enum=sync,enum=speculative_sync,enum=copy,enum=new_save,enum=reset"`
	Index  *int   `json:"index,omitempty" jsonschema:"description=commit: position in the pending list"`
	Key    string `json:"key,omitempty" jsonschema:"description=commit: label to resolve instead of index"`
	ID     string `json:"id,omitempty" jsonschema:"description=rewind: storylet or video id"`
	SaveID int64  `json:"save_id,omitempty" jsonschema:"description=copy: save to copy"`
}

// ServerMessage is pushed to frontends. State messages carry the engine
// view inline; Op is set on the reply to a client command.
type ServerMessage struct {
	Type string `json:"type" jsonschema:"enum=state,enum=error"`
	Op   string `json:"op,omitempty"`

	*engine.View

	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func stateMessage(op string, v engine.View) ServerMessage {
	return ServerMessage{Type: TypeState, Op: op, View: &v}
}

func errorMessage(op string, err error) ServerMessage {
	return ServerMessage{
		Type:    TypeError,
		Op:      op,
		Code:    string(engine.CodeOf(err)),
		Message: err.Error(),
	}
}

func badRequest(op string, err error) ServerMessage {
	return ServerMessage{Type: TypeError, Op: op, Code: CodeBadRequest, Message: err.Error()}
}

// Command converts m into a driver command.
func (m ClientMessage) Command() (engine.Command, error) {
	switch m.Op {
	case OpView:
		return engine.Command{Kind: engine.CmdView}, nil
	case OpStart:
		return engine.Command{Kind: engine.CmdStart}, nil
	case OpAdvance:
		return engine.Command{Kind: engine.CmdAdvance}, nil
	case OpCommit:
		sel := ir.ByIndex(0)
		switch {
		case m.Key != "":
			sel = ir.ByKey(m.Key)
		case m.Index != nil:
			sel = ir.ByIndex(*m.Index)
		}
		return engine.Command{Kind: engine.CmdCommit, Selector: sel}, nil
	case OpRewind:
		if m.ID == "" {
			return engine.Command{}, fmt.Errorf("rewind: id required")
		}
		return engine.Command{Kind: engine.CmdRewind, ID: m.ID}, nil
	case OpSync:
		return engine.Command{Kind: engine.CmdFullSync}, nil
	case OpSpeculativeSync:
		return engine.Command{Kind: engine.CmdSpeculativeSync}, nil
	case OpCopy:
		return engine.Command{Kind: engine.CmdCopy, SaveID: m.SaveID}, nil
	case OpNewSave:
		return engine.Command{Kind: engine.CmdForceNew}, nil
	case OpReset:
		return engine.Command{Kind: engine.CmdReset}, nil
	default:
		return engine.Command{}, fmt.Errorf("unknown op %q", m.Op)
	}
}
