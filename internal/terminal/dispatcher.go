package terminal

import (
	"context"
	"fmt"
	"html"
)

// Recorder observes dispatched commands. found is false for unknown names.
type Recorder interface {
	CommandDispatched(name string, found bool)
}

// Dispatcher routes input lines to commands.
type Dispatcher struct {
	registry *Registry
	recorder Recorder
}

// NewDispatcher creates a dispatcher over registry. recorder may be nil.
func NewDispatcher(registry *Registry, recorder Recorder) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		recorder: recorder,
	}
}

// Dispatch runs the command named by the first word of tc.Input. An unknown
// command is reported in the buffer and is not an error; the returned error
// comes from the command itself.
func (d *Dispatcher) Dispatch(ctx context.Context, tc *Context) error {
	name := tc.CommandName()

	cmd, ok := d.registry.Get(name)
	if d.recorder != nil {
		d.recorder.CommandDispatched(name, ok)
	}
	if !ok {
		tc.Add(NotFoundLine(name))
		return nil
	}

	if err := cmd.Execute(ctx, tc); err != nil {
		return fmt.Errorf("command %s: %w", cmd.Name(), err)
	}
	return nil
}

// NotFoundLine is the output for an unknown command.
func NotFoundLine(name string) string {
	return fmt.Sprintf("<span style='color: var(--error-color)'>Could not find command '%s'</span>",
		html.EscapeString(name))
}
