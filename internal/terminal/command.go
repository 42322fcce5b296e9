// Package terminal implements the command line shown on the home page.
package terminal

import (
	"context"
	"strings"
)

// Command is a terminal command. Execute may block; the dispatcher waits
// for it to return.
type Command interface {
	Name() string
	Description() string
	// Public commands are listed by help.
	Public() bool
	Execute(ctx context.Context, tc *Context) error
}

// Context is the state of one command invocation.
type Context struct {
	// Input is the raw line typed by the user.
	Input  string
	buffer Buffer
}

// NewContext binds input to the session output buffer.
func NewContext(input string, buffer Buffer) *Context {
	return &Context{Input: input, buffer: buffer}
}

// CommandName returns the input up to the first space.
func (c *Context) CommandName() string {
	name, _, _ := strings.Cut(c.Input, " ")
	return name
}

// Args returns the input after the first space, or "" when there is none.
func (c *Context) Args() string {
	_, args, _ := strings.Cut(c.Input, " ")
	return args
}

// Add writes one output line.
func (c *Context) Add(line string) {
	c.buffer.Add(line)
}
