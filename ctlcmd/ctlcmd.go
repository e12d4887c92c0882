// Package ctlcmd defines the text in/out control-socket command
// surface consumed by incengine. The actual UNIX-socket transport is an
// external collaborator (spec §1); this package only defines the
// Registrar seam and a trivial in-process Table implementation usable
// by tests and the example controller.
package ctlcmd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CommandFunc handles one control-socket command invocation, returning
// the text reply.
type CommandFunc func(args []string) string

// Registrar is implemented by the surrounding control socket (spec §6:
// "inc-engine/show-stats [engine]", etc. are registered once at
// init time).
type Registrar interface {
	RegisterCommand(name string, fn CommandFunc)
}

// Table is a minimal in-process Registrar + dispatcher, standing in for
// the real UNIX-socket command table in tests and the example binary.
type Table struct {
	mu       sync.RWMutex
	commands map[string]CommandFunc
}

// NewTable returns an empty command table.
func NewTable() *Table {
	return &Table{commands: make(map[string]CommandFunc)}
}

// RegisterCommand implements Registrar.
func (t *Table) RegisterCommand(name string, fn CommandFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commands[name] = fn
}

// Dispatch looks up name and invokes it with args, mirroring how the
// real control socket would route a received line.
func (t *Table) Dispatch(name string, args []string) (string, error) {
	t.mu.RLock()
	fn, ok := t.commands[name]
	t.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("ctlcmd: unknown command %q", name)
	}
	return fn(args), nil
}

// Names returns the registered command names, sorted, for diagnostics.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.commands))
	for n := range t.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Join is a small helper for command implementations building a
// multi-line text reply.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}
