package terminal

import (
	"sort"
	"strings"
)

// Registry resolves command names case-insensitively. It is built once and
// read-only afterwards.
type Registry struct {
	commands map[string]Command
}

// NewRegistry indexes cmds by name. A later command replaces an earlier one
// with the same name.
func NewRegistry(cmds ...Command) *Registry {
	r := &Registry{commands: make(map[string]Command, len(cmds))}
	for _, cmd := range cmds {
		r.commands[strings.ToLower(cmd.Name())] = cmd
	}
	return r
}

// Get returns the command registered under name.
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.commands)
}

// PublicCommands is the subset of commands listed by help.
type PublicCommands struct {
	sorted []Command
}

// NewPublicCommands keeps the public commands of cmds, deduplicated by
// name like the registry.
func NewPublicCommands(cmds ...Command) *PublicCommands {
	byName := make(map[string]Command)
	for _, cmd := range cmds {
		key := strings.ToLower(cmd.Name())
		if cmd.Public() {
			byName[key] = cmd
		} else {
			delete(byName, key)
		}
	}

	p := &PublicCommands{sorted: make([]Command, 0, len(byName))}
	for _, cmd := range byName {
		p.sorted = append(p.sorted, cmd)
	}
	sort.Slice(p.sorted, func(i, j int) bool {
		return p.sorted[i].Name() < p.sorted[j].Name()
	})
	return p
}

// Sorted returns the public commands ordered by name.
func (p *PublicCommands) Sorted() []Command {
	return append([]Command(nil), p.sorted...)
}
