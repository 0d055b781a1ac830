// Package store defines the append-only event log the ledger persists to,
// and in-process implementations of it.
package store

import (
	"context"
	"errors"
)

// Record is one stored entry: an opaque payload under a contiguous sequence
// number. Seq starts at 1.
type Record struct {
	Seq  uint64 `json:"seq"`
	Data []byte `json:"data"`
}

// Log is a minimal append-only event log.
//
// Contract:
//   - Append assigns the next contiguous sequence number and MUST make the
//     record durable before returning.
//   - AppendBatch persists every record or none: after an error, a reader
//     MUST NOT observe a strict prefix of the batch. Sequence numbers are
//     contiguous across the batch; an empty batch appends nothing.
//   - Stored records are immutable; there is no delete or rewrite.
//   - Read returns records with Seq >= from in ascending order; from==0 is
//     equivalent to from==1.
//   - Len returns the highest assigned sequence number.
type Log interface {
	Append(ctx context.Context, data []byte) (uint64, error)
	AppendBatch(ctx context.Context, batch [][]byte) ([]uint64, error)
	Read(ctx context.Context, from uint64) ([]Record, error)
	Len(ctx context.Context) (uint64, error)
	Close() error
}

// Shared log errors.
var (
	// ErrCorrupt indicates the backing store violates the Log contract
	// (gap or duplicate in the sequence, undecodable record).
	ErrCorrupt = errors.New("store: log corrupt")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store: log closed")
)
