package incengine

import "testing"

// fakeLeaf is a zero-input node whose Run result is controlled by the
// test via wantUpdate.
type fakeLeaf struct {
	BaseNode
	name        string
	wantUpdate  bool
	runs        int
	cleanupHook func()
}

func (f *fakeLeaf) Name() string { return f.name }
func (f *fakeLeaf) Run(ctx *RunContext) State {
	f.runs++
	if f.wantUpdate {
		return Updated
	}
	return Unchanged
}
func (f *fakeLeaf) Cleanup() {
	if f.cleanupHook != nil {
		f.cleanupHook()
	}
}

// fakeMid has one input and an optional handler, configurable per test.
type fakeMid struct {
	BaseNode
	name          string
	input         Node
	handler       ChangeHandler
	handlerCalled int
	runCalled     int
	runResult     State
	cleanupHook   func()
}

func (f *fakeMid) Name() string { return f.name }
func (f *fakeMid) InputEdges() []Edge {
	return []Edge{{Input: f.input, Handler: f.handler}}
}
func (f *fakeMid) Run(ctx *RunContext) State {
	f.runCalled++
	if f.runResult == Stale {
		return Updated
	}
	return f.runResult
}
func (f *fakeMid) Cleanup() {
	if f.cleanupHook != nil {
		f.cleanupHook()
	}
}

func buildChain(t *testing.T, l1Updates bool, midHandlerOK bool) (*Engine, *fakeLeaf, *fakeMid, *fakeMid) {
	t.Helper()
	l1 := &fakeLeaf{name: "L1", wantUpdate: l1Updates}

	m := &fakeMid{name: "M", input: l1}
	m.handler = func(ctx *RunContext, input Node) bool {
		m.handlerCalled++
		return midHandlerOK
	}

	term := &fakeMid{name: "T", input: m, handler: nil}

	e, err := Init(term, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return e, l1, m, term
}

// S6 (Engine incremental vs full): L1 -> M -> T; M has a handler on L1,
// T has no handler on M. Mutate L1. Expect: L1.Updated, M.compute += 1,
// T.recompute += 1.
func TestIncrementalVsFullRecompute(t *testing.T) {
	e, l1, m, term := buildChain(t, true, true)

	e.InitRun()
	e.Run(true)

	if got := e.State(l1); got != Updated {
		t.Errorf("L1 state = %v, want Updated", got)
	}
	if m.Stats().Compute != 1 {
		t.Errorf("M.compute = %d, want 1", m.Stats().Compute)
	}
	if term.Stats().Recompute != 1 {
		t.Errorf("T.recompute = %d, want 1", term.Stats().Recompute)
	}
	if got := e.State(term); got != Updated {
		t.Errorf("T state = %v, want Updated", got)
	}
}

func TestNoInputChangedMeansNoRecompute(t *testing.T) {
	e, l1, m, term := buildChain(t, false, true)

	e.InitRun()
	e.Run(true)

	if got := e.State(l1); got != Unchanged {
		t.Errorf("L1 state = %v, want Unchanged", got)
	}
	if m.runCalled != 0 {
		t.Errorf("M.Run invoked %d times, want 0 (invariant 6: no update => no full recompute)", m.runCalled)
	}
	if m.handlerCalled != 0 {
		t.Errorf("M handler invoked %d times, want 0", m.handlerCalled)
	}
	if got := e.State(m); got != Unchanged {
		t.Errorf("M state = %v, want Unchanged", got)
	}
	if got := e.State(term); got != Unchanged {
		t.Errorf("T state = %v, want Unchanged", got)
	}
}

// S7 (Engine abort propagation): recompute_allowed=false and a handler
// failure forces a recompute the engine can't perform => node becomes
// Aborted, run_aborted==true, and run(false) afterwards is a no-op.
func TestAbortPropagationAndRecoveryGate(t *testing.T) {
	e, _, m, term := buildChain(t, true, false) // handler fails => M needs full recompute

	e.InitRun()
	e.Run(false)

	if got := e.State(m); got != Aborted {
		t.Fatalf("M state = %v, want Aborted", got)
	}
	if !e.RunAborted() {
		t.Fatalf("RunAborted() = false, want true")
	}
	if got := e.State(term); got != Stale {
		t.Errorf("T state = %v, want Stale (engine stopped scheduling after abort)", got)
	}

	runsBefore := m.runCalled
	e.Run(false) // must be a no-op
	if m.runCalled != runsBefore {
		t.Errorf("Run(false) after abort invoked M.Run again: %d -> %d", runsBefore, m.runCalled)
	}

	// Allowing recompute clears the abort.
	e.InitRun()
	e.Run(true)
	if e.RunAborted() {
		t.Errorf("RunAborted() still true after a permitted recompute")
	}
	if got := e.State(m); got != Updated {
		t.Errorf("M state after recovery = %v, want Updated", got)
	}
}

func TestForceRecomputeSkipsHandlers(t *testing.T) {
	e, _, m, _ := buildChain(t, true, true)

	e.InitRun()
	e.TriggerRecompute()
	e.Run(true)

	if m.handlerCalled != 0 {
		t.Errorf("handler invoked %d times under force_recompute, want 0", m.handlerCalled)
	}
	if m.runCalled != 1 {
		t.Errorf("M.Run invoked %d times, want 1", m.runCalled)
	}
}

func TestNeedRunOnlyTouchesLeaves(t *testing.T) {
	e, l1, m, _ := buildChain(t, true, true)

	if !e.NeedRun() {
		t.Fatalf("NeedRun() = false, want true")
	}
	if m.runCalled != 0 {
		t.Errorf("NeedRun invoked non-leaf M.Run %d times, want 0", m.runCalled)
	}
	if got := e.State(l1); got != Updated {
		t.Errorf("L1 state after NeedRun = %v, want Updated", got)
	}
}

func TestMaxInputsEnforced(t *testing.T) {
	leaves := make([]Node, MaxInputs+1)
	for i := range leaves {
		leaves[i] = &fakeLeaf{name: "leaf"}
	}
	root := &manyInputNode{BaseNode: BaseNode{}, name: "root", inputs: leaves}

	if _, err := Init(root, nil); err == nil {
		t.Fatalf("Init accepted a node with > MAX_INPUT inputs")
	}
}

type manyInputNode struct {
	BaseNode
	name   string
	inputs []Node
}

func (m *manyInputNode) Name() string { return m.name }
func (m *manyInputNode) Run(ctx *RunContext) State {
	return Unchanged
}
func (m *manyInputNode) InputEdges() []Edge {
	edges := make([]Edge, len(m.inputs))
	for i, in := range m.inputs {
		edges[i] = Edge{Input: in}
	}
	return edges
}

func TestCleanupRunsInReverseTopologicalOrder(t *testing.T) {
	e, l1, m, term := buildChain(t, true, true)
	var order []string
	l1.cleanupHook = func() { order = append(order, "L1") }
	m.cleanupHook = func() { order = append(order, "M") }
	term.cleanupHook = func() { order = append(order, "T") }

	e.Cleanup()

	want := []string{"T", "M", "L1"}
	if len(order) != len(want) {
		t.Fatalf("Cleanup order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Cleanup order = %v, want %v", order, want)
		}
	}
}
