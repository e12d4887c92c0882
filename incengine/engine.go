// Package incengine implements the incremental processing engine (IPE):
// a directed-acyclic dataflow that schedules recomputation of nodes
// when inputs change, dispatching per-edge change-handlers to avoid
// full recomputation where possible.
package incengine

import (
	"fmt"

	"github.com/ovsrobot/ovn-sub001/ctlcmd"
	"github.com/ovsrobot/ovn-sub001/ovnlog"
)

var log = ovnlog.For("incengine")

// RunContext is passed to every Run/ChangeHandler invocation in place
// of letting node data reference other nodes directly (spec §9: "an
// explicit context parameter passed into run and handlers, rather than
// pointer cycles"). It is also how a handler reads an input's data
// under the visibility contract (spec §4.3).
type RunContext struct {
	engine *Engine
}

// GetData returns node's data pointer if node's state is Updated or
// Unchanged (or its Validator.IsValid override says so), and (nil,
// false) otherwise (spec §4.3 node-data visibility contract).
func (c *RunContext) GetData(node Node) (any, bool) {
	return c.engine.getData(node)
}

// ForceRecompute reports whether the current run is a forced full
// recompute (spec §4.3 step 1).
func (c *RunContext) ForceRecompute() bool {
	return c.engine.forceRecompute
}

// nodeRecord is the engine's bookkeeping for one DAG node.
type nodeRecord struct {
	node  Node
	state State
	data  any
}

// Engine is the IPE described in spec §3/§4.3: a topologically sorted
// sequence of nodes, leaves first, computed once from the chosen root.
type Engine struct {
	order   []*nodeRecord
	byNode  map[Node]*nodeRecord
	nodeCtx *RunContext

	forceRecompute bool
	runAborted     bool
}

// Init traverses dependencies from root (depth-first, memoized on
// pointer identity) to produce a topological order, invokes every
// node's Init hook, and — if reg is non-nil — registers the
// show-stats/clear-stats/recompute diagnostic commands (spec §4.3:
// init()).
func Init(root Node, reg ctlcmd.Registrar) (*Engine, error) {
	e := &Engine{
		byNode: make(map[Node]*nodeRecord),
	}
	e.nodeCtx = &RunContext{engine: e}

	visiting := make(map[Node]bool)
	var visit func(n Node) error
	visit = func(n Node) error {
		if _, done := e.byNode[n]; done {
			return nil
		}
		if visiting[n] {
			return fmt.Errorf("incengine: cycle detected at node %q", n.Name())
		}
		visiting[n] = true

		if ins, ok := n.(Inputs); ok {
			edges := ins.InputEdges()
			if len(edges) > MaxInputs {
				return fmt.Errorf("incengine: node %q declares %d inputs, exceeds MAX_INPUT (%d)", n.Name(), len(edges), MaxInputs)
			}
			for _, edge := range edges {
				if err := visit(edge.Input); err != nil {
					return err
				}
			}
		}

		visiting[n] = false
		rec := &nodeRecord{node: n, state: Stale}
		e.byNode[n] = rec
		e.order = append(e.order, rec)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}

	for _, rec := range e.order {
		if err := rec.node.Init(e.nodeCtx); err != nil {
			return nil, fmt.Errorf("incengine: init node %q: %w", rec.node.Name(), err)
		}
	}

	if reg != nil {
		e.registerCommands(reg)
	}

	return e, nil
}

// InitRun resets every node's state to Stale and invokes each node's
// ClearTrackedData hook where implemented (spec §4.3: init_run()).
func (e *Engine) InitRun() {
	for _, rec := range e.order {
		rec.state = Stale
		if clearer, ok := rec.node.(TrackedDataClearer); ok {
			clearer.ClearTrackedData()
		}
	}
}

// NeedRun invokes Run on every leaf (zero-input) node and returns true
// if any transitions to Updated (spec §4.3: need_run()). It does not
// advance non-leaf nodes and does not consume a full Run.
func (e *Engine) NeedRun() bool {
	anyUpdated := false
	for _, rec := range e.order {
		if _, ok := rec.node.(Inputs); ok {
			continue
		}
		state := rec.node.Run(e.nodeCtx)
		rec.state = state
		if state == Updated {
			anyUpdated = true
		}
	}
	return anyUpdated
}

// TriggerRecompute sets force_recompute for the next run (spec §4.3:
// trigger_recompute()). Waking a blocked daemon loop is the daemon's
// responsibility (out of scope, spec §1); this only flips the flag.
func (e *Engine) TriggerRecompute() {
	e.forceRecompute = true
}

// RunAborted reports whether the most recent Run ended with a node in
// the Aborted state.
func (e *Engine) RunAborted() bool {
	return e.runAborted
}

// Run processes nodes in topological order (spec §4.3: run()). If the
// previous run aborted and recomputeAllowed is false, this call is a
// no-op — spec §4.3: "a full recompute must be permitted to clear the
// abort."
func (e *Engine) Run(recomputeAllowed bool) {
	if e.runAborted && !recomputeAllowed {
		return
	}

	force := e.forceRecompute
	e.runAborted = false

	for _, rec := range e.order {
		state := e.runNode(rec, force, recomputeAllowed)
		rec.state = state
		if state == Aborted {
			e.runAborted = true
			break
		}
	}
	e.forceRecompute = false
}

func (e *Engine) runNode(rec *nodeRecord, force bool, recomputeAllowed bool) State {
	ins, hasInputs := rec.node.(Inputs)
	if !hasInputs {
		var state State
		ovnlog.Timed(log, rec.node.Name()+".run", func() {
			state = rec.node.Run(e.nodeCtx)
		})
		if base, ok := nodeBase(rec.node); ok {
			base.stats.Recompute++
		}
		if state == Stale {
			state = Unchanged
		}
		return state
	}

	if force {
		return e.fullRecompute(rec, recomputeAllowed)
	}

	edges := ins.InputEdges()
	anyUpdated := false

	for _, edge := range edges {
		inputRec, ok := e.byNode[edge.Input]
		if !ok || inputRec.state != Updated {
			continue
		}
		anyUpdated = true

		if edge.Handler == nil {
			return e.fullRecompute(rec, recomputeAllowed)
		}

		var handled bool
		ovnlog.Timed(log, rec.node.Name()+".handler", func() {
			handled = edge.Handler(e.nodeCtx, edge.Input)
		})
		if !handled {
			return e.fullRecompute(rec, recomputeAllowed)
		}
	}

	if anyUpdated {
		if base, ok := nodeBase(rec.node); ok {
			base.stats.Compute++
		}
		return Updated
	}
	return Unchanged
}

func (e *Engine) fullRecompute(rec *nodeRecord, recomputeAllowed bool) State {
	if !recomputeAllowed {
		if base, ok := nodeBase(rec.node); ok {
			base.stats.Abort++
		}
		return Aborted
	}

	var state State
	ovnlog.Timed(log, rec.node.Name()+".run", func() {
		state = rec.node.Run(e.nodeCtx)
	})
	if base, ok := nodeBase(rec.node); ok {
		base.stats.Recompute++
	}
	if state == Stale {
		state = Unchanged
	}
	return state
}

// getData implements the node-data visibility contract.
func (e *Engine) getData(node Node) (any, bool) {
	rec, ok := e.byNode[node]
	if !ok {
		return nil, false
	}
	visible := rec.state == Updated || rec.state == Unchanged
	if v, ok := rec.node.(Validator); ok {
		visible = v.IsValid(rec.state)
	}
	if !visible {
		return nil, false
	}
	return rec.data, true
}

// SetData stores node's opaque payload; nodes call this from within
// their own Run/ChangeHandler to publish data for downstream readers.
func (e *Engine) SetData(node Node, data any) {
	if rec, ok := e.byNode[node]; ok {
		rec.data = data
	}
}

// Cleanup invokes each node's ClearTrackedData and Cleanup hooks in
// reverse topological order and releases engine-owned bookkeeping (spec
// §3: "destroyed once at shutdown via cleanup (reverse topological
// order)").
func (e *Engine) Cleanup() {
	for i := len(e.order) - 1; i >= 0; i-- {
		rec := e.order[i]
		if clearer, ok := rec.node.(TrackedDataClearer); ok {
			clearer.ClearTrackedData()
		}
		rec.node.Cleanup()
		rec.data = nil
	}
}

// State returns the current state of node, or Stale if node is not part
// of this engine.
func (e *Engine) State(node Node) State {
	if rec, ok := e.byNode[node]; ok {
		return rec.state
	}
	return Stale
}

// Order returns the nodes in topological (leaves-first) order, for
// diagnostics.
func (e *Engine) Order() []Node {
	out := make([]Node, len(e.order))
	for i, rec := range e.order {
		out[i] = rec.node
	}
	return out
}

// nodeBase extracts *BaseNode from a node, if it embeds one, so the
// engine can update recompute/compute/abort counters without every
// node reimplementing that bookkeeping.
func nodeBase(n Node) (*BaseNode, bool) {
	type baseProvider interface {
		statsPtr() *BaseNode
	}
	if bp, ok := n.(baseProvider); ok {
		return bp.statsPtr(), true
	}
	return nil, false
}
