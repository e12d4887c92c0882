package dbnode

// FakeTable is an in-memory TrackedTable standing in for a southbound
// database table in engine tests, analogous to the teacher's
// NewLoopbackRoot providing a real but self-contained backing store for
// exercising tree-traversal logic without a kernel FUSE mount.
type FakeTable struct {
	name    string
	dirty   bool
	changes int
	rowErr  error
}

// NewFakeTable returns a table reporting no changes until MarkChanged
// is called.
func NewFakeTable(name string) *FakeTable {
	return &FakeTable{name: name}
}

func (f *FakeTable) Name() string { return f.name }

// Changed reports and clears the dirty flag, matching the "tracked
// changes...cleared between runs" contract in spec §4.4/GLOSSARY.
func (f *FakeTable) Changed() bool {
	if f.dirty {
		f.dirty = false
		return true
	}
	return false
}

// MarkChanged simulates a row-level modification arriving from the
// southbound database.
func (f *FakeTable) MarkChanged() {
	f.dirty = true
	f.changes++
}

// ChangeCount returns the number of times MarkChanged has been called,
// for test assertions independent of the consume-on-read Changed().
func (f *FakeTable) ChangeCount() int {
	return f.changes
}

// SetRowError makes the next LastRowError call (and only that call)
// return err, simulating a malformed row arriving from the southbound
// database.
func (f *FakeTable) SetRowError(err error) {
	f.rowErr = err
}

// LastRowError implements RowValidator, consuming the pending error set
// by SetRowError.
func (f *FakeTable) LastRowError() error {
	err := f.rowErr
	f.rowErr = nil
	return err
}
