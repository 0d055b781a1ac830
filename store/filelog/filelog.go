// Package filelog is a JSONL file-backed event log.
//
// One record per line, append-only, fsynced per append. It is offline and
// deterministic: no network, no wall-clock dependence.
package filelog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ncoquelet/RobinWood/store"
)

// Log is a filesystem-backed append-only log.
type Log struct {
	mu     sync.Mutex
	f      *os.File
	next   uint64
	closed bool
	path   string
}

var _ store.Log = (*Log)(nil)

// Open opens (creating if needed) the log at path and scans it to recover
// the next sequence number. A gap or duplicate fails with ErrCorrupt.
func (l *Log) scan() error {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.next = 1
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	want := uint64(1)
	for sc.Scan() {
		var rec store.Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return fmt.Errorf("%w: line %d: %v", store.ErrCorrupt, want, err)
		}
		if rec.Seq != want {
			return fmt.Errorf("%w: line has seq %d, want %d", store.ErrCorrupt, rec.Seq, want)
		}
		want++
	}
	if err := sc.Err(); err != nil {
		return err
	}
	l.next = want
	return nil
}

// Open opens the log file at path, creating it if needed.
func Open(path string) (*Log, error) {
	if path == "" {
		return nil, fmt.Errorf("filelog: path is required")
	}
	l := &Log{path: path}
	if err := l.scan(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	l.f = f
	return l, nil
}

func (l *Log) Append(ctx context.Context, data []byte) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, store.ErrClosed
	}
	rec := store.Record{Seq: l.next, Data: data}
	line, err := json.Marshal(rec)
	if err != nil {
		return 0, err
	}
	if _, err := l.f.Write(append(line, '\n')); err != nil {
		return 0, err
	}
	if err := l.f.Sync(); err != nil {
		return 0, err
	}
	l.next++
	return rec.Seq, nil
}

// AppendBatch writes the whole batch as one buffered write and one fsync.
// On a write or sync failure the file is truncated back to its pre-batch
// size, so a reader never sees a prefix of the batch.
func (l *Log) AppendBatch(ctx context.Context, batch [][]byte) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, store.ErrClosed
	}
	if len(batch) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	seqs := make([]uint64, len(batch))
	for i, data := range batch {
		rec := store.Record{Seq: l.next + uint64(i), Data: data}
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
		seqs[i] = rec.Seq
	}

	st, err := l.f.Stat()
	if err != nil {
		return nil, err
	}
	if _, err := l.f.Write(buf.Bytes()); err != nil {
		l.f.Truncate(st.Size())
		return nil, err
	}
	if err := l.f.Sync(); err != nil {
		l.f.Truncate(st.Size())
		return nil, err
	}
	l.next += uint64(len(batch))
	return seqs, nil
}

func (l *Log) Read(ctx context.Context, from uint64) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if from == 0 {
		from = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, store.ErrClosed
	}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []store.Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	want := uint64(1)
	for sc.Scan() {
		var rec store.Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", store.ErrCorrupt, want, err)
		}
		if rec.Seq != want {
			return nil, fmt.Errorf("%w: line has seq %d, want %d", store.ErrCorrupt, rec.Seq, want)
		}
		want++
		if rec.Seq >= from {
			out = append(out, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Log) Len(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, store.ErrClosed
	}
	return l.next - 1, nil
}

func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.f.Close()
}
