package incengine

// State is the per-node state machine described in spec §3/§4.3.
type State int

const (
	// Stale is the state every node starts a run in.
	Stale State = iota
	// Updated means the node recomputed (fully or incrementally) and
	// its data changed.
	Updated
	// Unchanged means the node was visited this run but its data did
	// not change.
	Unchanged
	// Aborted is terminal within a run: the engine stops scheduling
	// further nodes.
	Aborted
)

func (s State) String() string {
	switch s {
	case Stale:
		return "stale"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case Aborted:
		return "aborted"
	default:
		return "invalid"
	}
}

// MaxInputs bounds the number of inputs a single node may declare (spec
// §3: "length <= MAX_INPUT (256)").
const MaxInputs = 256

// ChangeHandler updates a node's data in response to one Updated input,
// returning true on success. Returning false falls back to a full
// recompute of the node (spec §4.3, step 2). Handlers must treat the
// input's data as read-only (spec §4.3 ordering note).
type ChangeHandler func(ctx *RunContext, input Node) bool

// Node is implemented by every participant in the engine's DAG. Engine
// nodes are created once at startup and destroyed once at shutdown
// (spec §3 lifecycle); Run/Cleanup/Init are the three lifecycle hooks.
type Node interface {
	// Name uniquely identifies the node for diagnostics and the
	// control-socket show-stats command.
	Name() string

	// Init is invoked once when the engine is built, before any Run.
	Init(ctx *RunContext) error

	// Run performs a full recompute of the node's data. It returns the
	// resulting state, which must be Updated or Unchanged (an engine
	// node's own Run never returns Aborted; only the engine's
	// scheduling logic produces Aborted, on a denied recompute).
	Run(ctx *RunContext) State

	// Cleanup releases the node's data; invoked once at engine
	// shutdown, in reverse topological order.
	Cleanup()
}

// Inputs is implemented by nodes with one or more declared inputs. Leaf
// nodes (spec §4.4's database-table adapters, for instance) do not
// implement this interface.
type Inputs interface {
	// InputEdges returns this node's declared inputs in handler-
	// invocation order (spec §4.3: "declared input order is the
	// handler-invocation order").
	InputEdges() []Edge
}

// Edge pairs an input node with its optional change-handler.
type Edge struct {
	Input   Node
	Handler ChangeHandler
}

// TrackedDataClearer is implemented by nodes that accumulate
// run-scoped bookkeeping (e.g. a delta list) that must be reset at the
// start of every run, independent of state (spec §4.3: init_run calls
// "each node's clear_tracked_data hook if present").
type TrackedDataClearer interface {
	ClearTrackedData()
}

// Validator lets a node override the default node-data visibility rule
// (spec §4.3: "A node that intends its data to be legible across runs
// even when not refreshed may supply a custom is_valid predicate").
type Validator interface {
	IsValid(s State) bool
}

// BaseNode is an embeddable helper providing no-op Init/Cleanup and the
// recompute/compute/abort counters described in spec §4.3. Concrete
// nodes embed it and implement Name/Run (and optionally InputEdges).
type BaseNode struct {
	stats Stats
}

// Stats returns the node's recompute/compute/abort counters.
func (b *BaseNode) Stats() Stats { return b.stats }

func (b *BaseNode) Init(ctx *RunContext) error { return nil }
func (b *BaseNode) Cleanup()                   {}

// statsPtr lets the engine reach into an embedded BaseNode to update
// counters without every concrete node reimplementing that bookkeeping.
func (b *BaseNode) statsPtr() *BaseNode { return b }

// Stats are the per-node counters named in spec §4.3 and exposed
// through show-stats (spec §6).
type Stats struct {
	Recompute uint64
	Compute   uint64
	Abort     uint64
}

func (s *Stats) reset() { *s = Stats{} }
