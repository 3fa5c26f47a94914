package command

import (
	"context"
	"fmt"

	"github.com/atomicstack/tab-mirror/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// Action runs one mirror operation and returns an informational message.
type Action func(ctx context.Context) (string, error)

// Request encapsulates an action invocation.
type Request struct {
	ID      string
	Label   string
	Handler Action
}

// Result reports the outcome of a Request back to the UI.
type Result struct {
	ID    string
	Label string
	Info  string
	Err   error
}

// Bus coordinates the execution of mirror actions.
type Bus struct {
	ctx context.Context
}

// New initialises a command bus instance whose actions run under ctx.
func New(ctx context.Context) *Bus {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Bus{ctx: ctx}
}

// Execute runs the handler immediately, on the caller's goroutine, because
// the mirror is owned by the Bubble Tea update loop. The returned command
// delivers the Result.
func (b *Bus) Execute(req Request) tea.Cmd {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	events.Command.Queue(req.ID, req.Label)
	if req.Handler == nil {
		events.Command.Skip(req.ID, req.Label)
		return nil
	}
	info, err := req.Handler(b.ctx)
	res := Result{ID: req.ID, Label: req.Label, Info: info, Err: err}
	events.Command.Result(req.ID, req.Label, outcome(err))
	return func() tea.Msg { return res }
}

func outcome(err error) string {
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}
