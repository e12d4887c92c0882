package workerpool

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
)

func TestRunMergesAllBuckets(t *testing.T) {
	buckets := []Bucket{{0, 10}, {10, 20}, {20, 30}, {30, 40}}
	p := New(2)

	var mu sync.Mutex
	var got []int

	err := p.Run(context.Background(), buckets,
		func(ctx context.Context, b Bucket) (any, error) {
			return b.Start, nil
		},
		func(partial any) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, partial.(int))
		},
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	sort.Ints(got)
	want := []int{0, 10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRunPropagatesWorkerError(t *testing.T) {
	buckets := []Bucket{{0, 1}, {1, 2}, {2, 3}}
	p := New(3)
	boom := errors.New("boom")

	err := p.Run(context.Background(), buckets,
		func(ctx context.Context, b Bucket) (any, error) {
			if b.Start == 1 {
				return nil, boom
			}
			<-ctx.Done()
			return nil, ctx.Err()
		},
		func(partial any) {},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want non-nil wrapping/equal to boom", err)
	}
}

func TestRunRespectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(1)
	err := p.Run(ctx, []Bucket{{0, 1}},
		func(ctx context.Context, b Bucket) (any, error) {
			return nil, nil
		},
		func(partial any) {},
	)
	if err == nil {
		t.Fatalf("Run with pre-canceled context = nil error, want context.Canceled")
	}
}

func TestRunWithNoBuckets(t *testing.T) {
	p := New(4)
	called := false
	err := p.Run(context.Background(), nil,
		func(ctx context.Context, b Bucket) (any, error) { return nil, nil },
		func(partial any) { called = true },
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if called {
		t.Errorf("merge invoked with no buckets")
	}
}

func TestNewClampsNonPositiveSize(t *testing.T) {
	p := New(0)
	if p.size != 1 {
		t.Errorf("New(0).size = %d, want 1", p.size)
	}
}
