package store

import (
	"context"
	"fmt"
)

// NamedLog associates a Log with a stable backend name, for reporting in
// multi-backend setups.
type NamedLog struct {
	Name string
	Log  Log
}

// Replicating writes every record to all configured backends. Reads fall
// back in order. All backends must assign the same sequence number for an
// append, otherwise the log is reported corrupt; backends are expected to
// start from the same state.
type Replicating struct {
	Backends []NamedLog
}

var _ Log = (*Replicating)(nil)

func (r *Replicating) Append(ctx context.Context, data []byte) (uint64, error) {
	if len(r.Backends) == 0 {
		return 0, fmt.Errorf("store: Replicating has no backends")
	}
	var seq uint64
	for i, b := range r.Backends {
		if b.Log == nil {
			return 0, fmt.Errorf("store: nil log for backend %q", b.Name)
		}
		got, err := b.Log.Append(ctx, data)
		if err != nil {
			return 0, fmt.Errorf("store: backend %q: %w", b.Name, err)
		}
		if i == 0 {
			seq = got
			continue
		}
		if got != seq {
			return 0, fmt.Errorf("%w: backend %q assigned seq %d, want %d", ErrCorrupt, b.Name, got, seq)
		}
	}
	return seq, nil
}

func (r *Replicating) AppendBatch(ctx context.Context, batch [][]byte) ([]uint64, error) {
	if len(r.Backends) == 0 {
		return nil, fmt.Errorf("store: Replicating has no backends")
	}
	var seqs []uint64
	for i, b := range r.Backends {
		if b.Log == nil {
			return nil, fmt.Errorf("store: nil log for backend %q", b.Name)
		}
		got, err := b.Log.AppendBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("store: backend %q: %w", b.Name, err)
		}
		if i == 0 {
			seqs = got
			continue
		}
		if len(got) != len(seqs) || (len(got) > 0 && got[0] != seqs[0]) {
			return nil, fmt.Errorf("%w: backend %q assigned seqs %v, want %v", ErrCorrupt, b.Name, got, seqs)
		}
	}
	return seqs, nil
}

func (r *Replicating) Read(ctx context.Context, from uint64) ([]Record, error) {
	var firstErr error
	for _, b := range r.Backends {
		recs, err := b.Log.Read(ctx, from)
		if err == nil {
			return recs, nil
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("store: backend %q: %w", b.Name, err)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, fmt.Errorf("store: Replicating has no backends")
}

func (r *Replicating) Len(ctx context.Context) (uint64, error) {
	var firstErr error
	for _, b := range r.Backends {
		n, err := b.Log.Len(ctx)
		if err == nil {
			return n, nil
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("store: backend %q: %w", b.Name, err)
		}
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return 0, fmt.Errorf("store: Replicating has no backends")
}

func (r *Replicating) Close() error {
	var firstErr error
	for _, b := range r.Backends {
		if err := b.Log.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("store: backend %q: %w", b.Name, err)
		}
	}
	return firstErr
}
