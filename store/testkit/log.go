// Package testkit provides a conformance battery every Log backend must
// pass.
package testkit

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/ncoquelet/RobinWood/store"
)

// NewLog constructs a fresh, empty Log for a test.
// The returned Log MUST be isolated from other tests.
type NewLog func(t *testing.T) store.Log

// Reopen reconstructs a Log over the same backing state, for durability
// checks. Backends without durable state return nil for this.
type Reopen func(t *testing.T, old store.Log) store.Log

func RunLogConformance(t *testing.T, newLog NewLog, reopen Reopen) {
	t.Helper()
	ctx := context.Background()

	t.Run("AppendAssignsContiguousSeq", func(t *testing.T) {
		log := newLog(t)
		defer log.Close()
		for i := 1; i <= 5; i++ {
			seq, err := log.Append(ctx, []byte(fmt.Sprintf("event-%d", i)))
			if err != nil {
				t.Fatalf("Append(%d) failed: %v", i, err)
			}
			if seq != uint64(i) {
				t.Fatalf("Append(%d) assigned seq %d", i, seq)
			}
		}
		n, err := log.Len(ctx)
		if err != nil {
			t.Fatalf("Len failed: %v", err)
		}
		if n != 5 {
			t.Fatalf("Len = %d, want 5", n)
		}
	})

	t.Run("AppendBatchIsContiguous", func(t *testing.T) {
		log := newLog(t)
		defer log.Close()
		if _, err := log.Append(ctx, []byte("single")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		seqs, err := log.AppendBatch(ctx, [][]byte{[]byte("b1"), []byte("b2"), []byte("b3")})
		if err != nil {
			t.Fatalf("AppendBatch failed: %v", err)
		}
		if len(seqs) != 3 || seqs[0] != 2 || seqs[1] != 3 || seqs[2] != 4 {
			t.Fatalf("AppendBatch seqs = %v, want [2 3 4]", seqs)
		}
		seq, err := log.Append(ctx, []byte("after"))
		if err != nil {
			t.Fatalf("Append after batch failed: %v", err)
		}
		if seq != 5 {
			t.Fatalf("Append after batch assigned seq %d, want 5", seq)
		}
		recs, err := log.Read(ctx, 2)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(recs) != 4 || !bytes.Equal(recs[0].Data, []byte("b1")) || !bytes.Equal(recs[2].Data, []byte("b3")) {
			t.Fatalf("Read(2) = %+v", recs)
		}
	})

	t.Run("AppendBatchEmptyIsNoop", func(t *testing.T) {
		log := newLog(t)
		defer log.Close()
		if _, err := log.AppendBatch(ctx, nil); err != nil {
			t.Fatalf("empty AppendBatch failed: %v", err)
		}
		n, err := log.Len(ctx)
		if err != nil {
			t.Fatalf("Len failed: %v", err)
		}
		if n != 0 {
			t.Fatalf("Len after empty batch = %d", n)
		}
	})

	t.Run("ReadReturnsAscendingFrom", func(t *testing.T) {
		log := newLog(t)
		defer log.Close()
		for i := 1; i <= 4; i++ {
			if _, err := log.Append(ctx, []byte(fmt.Sprintf("e%d", i))); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		recs, err := log.Read(ctx, 3)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(recs) != 2 || recs[0].Seq != 3 || recs[1].Seq != 4 {
			t.Fatalf("Read(3) = %+v", recs)
		}
		if !bytes.Equal(recs[0].Data, []byte("e3")) {
			t.Fatalf("Read(3) data = %q", recs[0].Data)
		}

		// from == 0 behaves as from == 1.
		all, err := log.Read(ctx, 0)
		if err != nil {
			t.Fatalf("Read(0) failed: %v", err)
		}
		if len(all) != 4 {
			t.Fatalf("Read(0) returned %d records", len(all))
		}
	})

	t.Run("ReadPastEndIsEmpty", func(t *testing.T) {
		log := newLog(t)
		defer log.Close()
		if _, err := log.Append(ctx, []byte("only")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		recs, err := log.Read(ctx, 99)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("Read(99) = %+v, want empty", recs)
		}
	})

	t.Run("EmptyLog", func(t *testing.T) {
		log := newLog(t)
		defer log.Close()
		n, err := log.Len(ctx)
		if err != nil {
			t.Fatalf("Len failed: %v", err)
		}
		if n != 0 {
			t.Fatalf("Len of empty log = %d", n)
		}
		recs, err := log.Read(ctx, 1)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("Read of empty log = %+v", recs)
		}
	})

	if reopen == nil {
		return
	}

	t.Run("SurvivesReopen", func(t *testing.T) {
		log := newLog(t)
		for i := 1; i <= 3; i++ {
			if _, err := log.Append(ctx, []byte(fmt.Sprintf("persist-%d", i))); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		if err := log.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		log2 := reopen(t, log)
		defer log2.Close()
		recs, err := log2.Read(ctx, 1)
		if err != nil {
			t.Fatalf("Read after reopen failed: %v", err)
		}
		if len(recs) != 3 {
			t.Fatalf("reopen lost records: %d", len(recs))
		}
		seq, err := log2.Append(ctx, []byte("persist-4"))
		if err != nil {
			t.Fatalf("Append after reopen failed: %v", err)
		}
		if seq != 4 {
			t.Fatalf("Append after reopen assigned seq %d, want 4", seq)
		}
	})
}
