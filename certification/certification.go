// Package certification implements the producer certification ledger: a
// many-to-many relation between producers and allowed labels, mutated only
// by each label's owning certifier.
//
// A producer holds at most one certification unit per label, which is why
// BalanceOf only ever reports 0 or 1. Certifications never move between
// producers.
package certification

import (
	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
)

// LabelGate is the slice of the label registry this ledger depends on.
type LabelGate interface {
	// IsAllowedFor reports whether the label is allowed and owned by certifier.
	IsAllowedFor(labelID uint64, certifier identity.Address) bool
	// OwnerOf returns the label's owning certifier.
	OwnerOf(labelID uint64) (identity.Address, error)
}

type certKey struct {
	producer identity.Address
	labelID  uint64
}

// Ledger holds the certification table.
type Ledger struct {
	labels LabelGate
	certs  map[certKey]bool
}

// NewLedger creates an empty certification ledger over the given gate.
func NewLedger(labels LabelGate) *Ledger {
	return &Ledger{
		labels: labels,
		certs:  make(map[certKey]bool),
	}
}

// Certify grants producer the certification for labelID. The caller must own
// the label and the label must currently be allowed. Re-certifying is a
// silent no-op: no state change, no event.
func (l *Ledger) Certify(caller, producer identity.Address, labelID uint64) ([]event.Event, error) {
	if !l.labels.IsAllowedFor(labelID, caller) {
		return nil, &NotAllowedLabelError{Caller: caller, LabelID: labelID}
	}
	if l.certs[certKey{producer: producer, labelID: labelID}] {
		return nil, nil
	}
	return []event.Event{
		event.MustNew(event.Certified{Producer: producer, LabelID: labelID, Certified: true}),
	}, nil
}

// Revoke clears producer's certification for labelID. Only label ownership
// is checked: the allowed flag is deliberately not re-checked, so a
// certifier can clean up certifications on a label the authority has since
// disallowed. Revoking an uncertified pair is a silent no-op.
func (l *Ledger) Revoke(caller, producer identity.Address, labelID uint64) ([]event.Event, error) {
	owner, err := l.labels.OwnerOf(labelID)
	if err != nil || owner != caller {
		return nil, &NotAllowedLabelError{Caller: caller, LabelID: labelID}
	}
	if !l.certs[certKey{producer: producer, labelID: labelID}] {
		return nil, nil
	}
	return []event.Event{
		event.MustNew(event.Certified{Producer: producer, LabelID: labelID, Certified: false}),
	}, nil
}

// Transfer always fails: certifications are bound to the certified producer.
func (l *Ledger) Transfer(caller, to identity.Address, labelID uint64) error {
	return &NotTransferableError{Caller: caller}
}

// IsCertified reports whether producer currently holds the certification.
func (l *Ledger) IsCertified(producer identity.Address, labelID uint64) bool {
	return l.certs[certKey{producer: producer, labelID: labelID}]
}

// BalanceOf mirrors the boolean as a unit count for batch-style queries.
func (l *Ledger) BalanceOf(producer identity.Address, labelID uint64) uint64 {
	if l.IsCertified(producer, labelID) {
		return 1
	}
	return 0
}

// Apply folds one event into ledger state.
func (l *Ledger) Apply(ev event.Event) error {
	if ev.Kind != event.KindCertified {
		return nil
	}
	var p event.Certified
	if err := ev.Decode(&p); err != nil {
		return err
	}
	key := certKey{producer: p.Producer, labelID: p.LabelID}
	if p.Certified {
		l.certs[key] = true
	} else {
		delete(l.certs, key)
	}
	return nil
}
