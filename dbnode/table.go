// Package dbnode provides the database-table adapter leaf nodes
// described in spec §4.4: thin shims presenting southbound database
// tables as incengine leaf nodes whose Run reports Updated iff any
// tracked row changed.
package dbnode

import (
	"github.com/ovsrobot/ovn-sub001/incengine"
	"github.com/ovsrobot/ovn-sub001/ovnlog"
)

var log = ovnlog.For("dbnode")

// rowWarnLimiter caps malformed-row warnings at a few lines per second
// regardless of how many rows a southbound table update touches (spec
// §7: input validation failures are logged rate-limited, not per-row).
var rowWarnLimiter = ovnlog.NewLimiter(log, 2, 5)

// RowValidator is optionally implemented by a TrackedTable whose rows
// need validation beyond plain change-tracking. LastRowError returns
// the most recently observed malformed-row error, or nil if the last
// Changed() call saw none.
type RowValidator interface {
	LastRowError() error
}

// TrackedTable is implemented by the southbound database client
// (external collaborator, spec §1). Changed reports whether any row in
// the table has a tracked modification since the last call, and is
// expected to clear that tracking on each call — mirroring the "tracked
// changes" iterator language in spec §6.
type TrackedTable interface {
	Name() string
	Changed() bool
}

// Index models a named secondary index over a table (spec §6:
// port_binding_by_name, port_binding_by_key, mac_binding_by_lport_ip).
// The lookup function itself belongs to the southbound client; this
// type only carries the stable name used to retrieve it.
type Index struct {
	Name   string
	Lookup func(key string) (any, bool)
}

// TableNode is a generic adapter: a leaf incengine.Node wrapping one
// TrackedTable plus the set of named indexes downstream nodes may query
// by name (spec §4.4: "Registration of indexes happens once at init
// time").
type TableNode struct {
	incengine.BaseNode

	table   TrackedTable
	indexes map[string]Index
}

// NewTableNode wraps table, registering the given indexes by name.
func NewTableNode(table TrackedTable, indexes ...Index) *TableNode {
	n := &TableNode{
		table:   table,
		indexes: make(map[string]Index, len(indexes)),
	}
	for _, idx := range indexes {
		n.indexes[idx.Name] = idx
	}
	return n
}

// Name returns the underlying table's name.
func (n *TableNode) Name() string { return n.table.Name() }

// Index retrieves a previously registered index by name; ok is false if
// no index was registered under that name.
func (n *TableNode) Index(name string) (Index, bool) {
	idx, ok := n.indexes[name]
	return idx, ok
}

// Run reports Updated iff the underlying table reports a tracked
// change since the last run, else Unchanged (spec §4.4). If the table
// implements RowValidator and reports a malformed row, the row is
// skipped and a rate-limited warning logged rather than surfaced to the
// engine as an error (spec §7): a bad row degrades to "no change" for
// that table this run.
func (n *TableNode) Run(ctx *incengine.RunContext) incengine.State {
	if rv, ok := n.table.(RowValidator); ok {
		if err := rv.LastRowError(); err != nil {
			rowWarnLimiter.Warn("skipping malformed row", map[string]any{"table": n.Name(), "error": err})
			return incengine.Unchanged
		}
	}
	if n.table.Changed() {
		return incengine.Updated
	}
	return incengine.Unchanged
}
