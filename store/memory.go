package store

import (
	"context"
	"sync"
)

// MemLog is an in-memory Log for tests and simulations.
type MemLog struct {
	mu      sync.RWMutex
	records []Record
	closed  bool
}

var _ Log = (*MemLog)(nil)

// NewMemLog returns an empty in-memory log.
func NewMemLog() *MemLog {
	return &MemLog{}
}

func (m *MemLog) Append(ctx context.Context, data []byte) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	seq := uint64(len(m.records)) + 1
	cp := make([]byte, len(data))
	copy(cp, data)
	m.records = append(m.records, Record{Seq: seq, Data: cp})
	return seq, nil
}

func (m *MemLog) AppendBatch(ctx context.Context, batch [][]byte) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	seqs := make([]uint64, len(batch))
	for i, data := range batch {
		seq := uint64(len(m.records)) + 1
		cp := make([]byte, len(data))
		copy(cp, data)
		m.records = append(m.records, Record{Seq: seq, Data: cp})
		seqs[i] = seq
	}
	return seqs, nil
}

func (m *MemLog) Read(ctx context.Context, from uint64) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if from == 0 {
		from = 1
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	if from > uint64(len(m.records)) {
		return nil, nil
	}
	out := make([]Record, uint64(len(m.records))-from+1)
	copy(out, m.records[from-1:])
	return out, nil
}

func (m *MemLog) Len(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	return uint64(len(m.records)), nil
}

func (m *MemLog) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
