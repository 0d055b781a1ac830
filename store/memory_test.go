package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ncoquelet/RobinWood/store"
	"github.com/ncoquelet/RobinWood/store/testkit"
)

func TestMemLog_Conformance(t *testing.T) {
	testkit.RunLogConformance(t, func(t *testing.T) store.Log {
		t.Helper()
		return store.NewMemLog()
	}, nil)
}

func TestMemLog_Closed(t *testing.T) {
	ctx := context.Background()
	log := store.NewMemLog()
	if err := log.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := log.Append(ctx, []byte("x")); !errors.Is(err, store.ErrClosed) {
		t.Fatalf("Append after close: %v, want ErrClosed", err)
	}
	if _, err := log.Read(ctx, 1); !errors.Is(err, store.ErrClosed) {
		t.Fatalf("Read after close: %v, want ErrClosed", err)
	}
}

func TestReplicating_Conformance(t *testing.T) {
	testkit.RunLogConformance(t, func(t *testing.T) store.Log {
		t.Helper()
		return &store.Replicating{Backends: []store.NamedLog{
			{Name: "a", Log: store.NewMemLog()},
			{Name: "b", Log: store.NewMemLog()},
		}}
	}, nil)
}

func TestReplicating_DetectsDivergentSeq(t *testing.T) {
	ctx := context.Background()
	a := store.NewMemLog()
	b := store.NewMemLog()
	// Desynchronize b before wiring the pair together.
	if _, err := b.Append(ctx, []byte("stray")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	r := &store.Replicating{Backends: []store.NamedLog{
		{Name: "a", Log: a},
		{Name: "b", Log: b},
	}}
	if _, err := r.Append(ctx, []byte("event")); !errors.Is(err, store.ErrCorrupt) {
		t.Fatalf("Append on divergent backends: %v, want ErrCorrupt", err)
	}
}

func TestReplicating_ReadFallsBack(t *testing.T) {
	ctx := context.Background()
	a := store.NewMemLog()
	b := store.NewMemLog()
	r := &store.Replicating{Backends: []store.NamedLog{
		{Name: "a", Log: a},
		{Name: "b", Log: b},
	}}
	if _, err := r.Append(ctx, []byte("event")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	recs, err := r.Read(ctx, 1)
	if err != nil {
		t.Fatalf("Read with dead primary failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Read = %+v", recs)
	}
}
