package terminal

import (
	"context"
	"fmt"
)

// lineCommand writes fixed lines.
type lineCommand struct {
	name        string
	description string
	public      bool
	lines       []string
}

func (c *lineCommand) Name() string        { return c.name }
func (c *lineCommand) Description() string { return c.description }
func (c *lineCommand) Public() bool        { return c.public }

func (c *lineCommand) Execute(_ context.Context, tc *Context) error {
	for _, line := range c.lines {
		tc.Add(line)
	}
	return nil
}

// SkillLines is the output of the skills command.
var SkillLines = []string{
	"- C#, .NET 8/9/10",
	"- Source Generators",
	"- Networking (TCP/UDP, REST APIs, WebSockets)",
	"- ASP.NET Core, Blazor, EF Core",
	"- Software Architecture & Simplicity",
}

// Skills lists skills and interests.
func Skills() Command {
	return &lineCommand{name: "skills", description: "List of skills & interests", public: true, lines: SkillLines}
}

// Hire answers the obvious question.
func Hire() Command {
	return &lineCommand{
		name:        "hire",
		description: "Hire me",
		public:      true,
		lines:       []string{"Permission granted. Hiring sequence initiated."},
	}
}

func Niklas() Command {
	return &lineCommand{name: "niklas", description: "It is niklas...", lines: []string{"Who? ... :*"}}
}

func Lukas() Command {
	return &lineCommand{name: "lukas", description: "It is lukas...", lines: []string{"Ew, lukas..."}}
}

func Sudo() Command {
	return &lineCommand{
		name: "sudo",
		lines: []string{
			"<span style='color: var(--error-color)'>👀 Nice try. You’re not even root in your own life.</span>",
		},
	}
}

// HelpHeader is the first line written by help.
const HelpHeader = "Available commands: "

type helpCommand struct {
	public *PublicCommands
}

// Help lists the commands of public.
func Help(public *PublicCommands) Command {
	return &helpCommand{public: public}
}

func (c *helpCommand) Name() string        { return "help" }
func (c *helpCommand) Description() string { return "Displays help" }
func (c *helpCommand) Public() bool        { return false }

func (c *helpCommand) Execute(_ context.Context, tc *Context) error {
	tc.Add(HelpHeader)
	for _, cmd := range c.public.Sorted() {
		tc.Add(fmt.Sprintf("%s - %s", cmd.Name(), cmd.Description()))
	}
	return nil
}

// Builtins returns every built-in command except help.
func Builtins() []Command {
	return []Command{Skills(), Hire(), Niklas(), Lukas(), Sudo()}
}

// NewDefaultRegistry registers the built-ins plus extra, with help listing
// the public ones.
func NewDefaultRegistry(extra ...Command) *Registry {
	cmds := append(Builtins(), extra...)
	help := Help(NewPublicCommands(cmds...))
	return NewRegistry(append([]Command{help}, cmds...)...)
}
