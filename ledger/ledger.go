// Package ledger composes the label registry, the certification ledger and
// the merchandise registry behind one single-writer surface.
//
// Every mutating operation runs under one writer lock, validates against
// committed state, appends its events to the durable log and only then folds
// them into memory. Reads run under the reader lock and never observe an
// in-flight mutation. There are no timeouts, no retries and no background
// work: an operation either commits fully or rejects without any state
// change.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ncoquelet/RobinWood/certification"
	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
	"github.com/ncoquelet/RobinWood/label"
	"github.com/ncoquelet/RobinWood/merchandise"
	"github.com/ncoquelet/RobinWood/store"
)

// Config wires the ledger's dependencies. All fields are required.
type Config struct {
	// Authority is the single identity allowed to allow/disallow labels.
	Authority identity.Address
	// Verifier checks transport acceptance signatures.
	Verifier identity.Verifier
	// Log is the durable append-only event store.
	Log store.Log
}

// ErrHalted is returned once the ledger detected a store failure during a
// commit. Memory and the log can no longer be trusted to agree; reopen from
// the log, which holds only whole commits.
var ErrHalted = errors.New("ledger: halted after store failure, reopen from the log")

// Ledger is the single mutation entry point of the system.
type Ledger struct {
	mu     sync.RWMutex
	log    store.Log
	halted error

	labels *label.Registry
	certs  *certification.Ledger
	items  *merchandise.Registry

	subMu   sync.Mutex
	subs    map[int]chan event.Event
	nextSub int
}

// Open builds a ledger over cfg and replays the full log to rebuild state.
func Open(ctx context.Context, cfg Config) (*Ledger, error) {
	if cfg.Authority.IsZero() {
		return nil, errors.New("ledger: authority address is required")
	}
	if cfg.Verifier == nil {
		return nil, errors.New("ledger: verifier is required")
	}
	if cfg.Log == nil {
		return nil, errors.New("ledger: event log is required")
	}

	labels := label.NewRegistry(cfg.Authority)
	certs := certification.NewLedger(labels)
	items := merchandise.NewRegistry(certs, cfg.Verifier)
	l := &Ledger{
		log:    cfg.Log,
		labels: labels,
		certs:  certs,
		items:  items,
		subs:   make(map[int]chan event.Event),
	}

	recs, err := cfg.Log.Read(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("ledger: replay: %w", err)
	}
	for _, rec := range recs {
		ev, err := event.Unmarshal(rec.Data)
		if err != nil {
			return nil, fmt.Errorf("ledger: replay seq %d: %w", rec.Seq, err)
		}
		ev.Seq = rec.Seq
		if err := l.apply(ev); err != nil {
			return nil, fmt.Errorf("ledger: replay seq %d: %w", rec.Seq, err)
		}
	}
	return l, nil
}

// Authority returns the configured system authority.
func (l *Ledger) Authority() identity.Address {
	return l.labels.Authority()
}

func (l *Ledger) apply(ev event.Event) error {
	if err := l.labels.Apply(ev); err != nil {
		return err
	}
	if err := l.certs.Apply(ev); err != nil {
		return err
	}
	return l.items.Apply(ev)
}

// mutate runs one command under the writer lock: produce events, persist
// them, fold them in, fan them out.
func (l *Ledger) mutate(ctx context.Context, cmd func() ([]event.Event, error)) ([]event.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.halted != nil {
		return nil, fmt.Errorf("%w: %v", ErrHalted, l.halted)
	}

	events, err := cmd()
	if err != nil {
		return nil, err
	}

	batch := make([][]byte, len(events))
	for i := range events {
		data, err := events[i].Marshal()
		if err != nil {
			return nil, err
		}
		batch[i] = data
	}
	// One batch per commit: a single-backend log persists all of it or none
	// of it, so a reopen never replays a partial commit. A replicated log can
	// still fail between backends with one replica holding the whole batch,
	// so any append failure halts until the operator reopens.
	seqs, err := l.log.AppendBatch(ctx, batch)
	if err != nil {
		l.halted = err
		return nil, fmt.Errorf("ledger: append: %w", err)
	}
	for i := range events {
		events[i].Seq = seqs[i]
	}
	for _, ev := range events {
		if err := l.apply(ev); err != nil {
			l.halted = err
			return nil, fmt.Errorf("ledger: apply: %w", err)
		}
	}

	l.publish(events)
	return events, nil
}

// Events returns the committed stream from sequence number from (0 and 1 are
// equivalent).
func (l *Ledger) Events(ctx context.Context, from uint64) ([]event.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	recs, err := l.log.Read(ctx, from)
	if err != nil {
		return nil, err
	}
	out := make([]event.Event, 0, len(recs))
	for _, rec := range recs {
		ev, err := event.Unmarshal(rec.Data)
		if err != nil {
			return nil, fmt.Errorf("ledger: seq %d: %w", rec.Seq, err)
		}
		ev.Seq = rec.Seq
		out = append(out, ev)
	}
	return out, nil
}

// Subscribe registers a live tail of newly committed events. The channel is
// buffered; a consumer that falls behind misses events and should catch up
// with Events. cancel releases the subscription.
func (l *Ledger) Subscribe() (<-chan event.Event, func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	id := l.nextSub
	l.nextSub++
	ch := make(chan event.Event, 256)
	l.subs[id] = ch
	cancel := func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		if _, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (l *Ledger) publish(events []event.Event) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for _, ev := range events {
		for _, ch := range l.subs {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}
