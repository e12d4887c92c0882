package ovnstats

import "testing"

func TestIncAndSnapshot(t *testing.T) {
	c := NewCounters()
	c.Inc(LflowCacheHit)
	c.Inc(LflowCacheHit)
	c.Add(LflowCacheMiss, 3)

	snap := c.Snapshot()
	if snap[LflowCacheHit] != 2 {
		t.Errorf("hit = %d, want 2", snap[LflowCacheHit])
	}
	if snap[LflowCacheMiss] != 3 {
		t.Errorf("miss = %d, want 3", snap[LflowCacheMiss])
	}
	if snap[LflowCacheFull] != 0 {
		t.Errorf("full = %d, want 0", snap[LflowCacheFull])
	}
}

func TestReset(t *testing.T) {
	c := NewCounters()
	c.Inc(LflowCacheFull)
	c.Reset()
	if got := c.Get(LflowCacheFull); got != 0 {
		t.Errorf("Get after Reset = %d, want 0", got)
	}
}
