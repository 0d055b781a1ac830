// Package label implements the label registry: certification schemes
// submitted by certifiers and gated by the system authority.
//
// The registry is a pure state component. Commands validate against current
// state and return the events to append; Apply folds events back into state.
// Serialization of commands against applies is the ledger's job, not this
// package's.
package label

import (
	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
)

type record struct {
	owner   identity.Address
	uri     string
	allowed bool
}

// Registry holds the label table.
type Registry struct {
	authority identity.Address
	labels    map[uint64]*record
	nextID    uint64
}

// NewRegistry creates an empty registry gated by the given authority.
func NewRegistry(authority identity.Address) *Registry {
	return &Registry{
		authority: authority,
		labels:    make(map[uint64]*record),
	}
}

// Authority returns the configured system authority.
func (r *Registry) Authority() identity.Address {
	return r.authority
}

// Submit registers a new label owned by caller. Open to any caller. The
// label starts disallowed; both the submission and the initial allowed=false
// state are recorded.
func (r *Registry) Submit(caller identity.Address, uri string) (uint64, []event.Event, error) {
	if caller.IsZero() {
		return 0, nil, &InvalidCallerError{Caller: caller}
	}
	id := r.nextID
	return id, []event.Event{
		event.MustNew(event.LabelSubmitted{Certifier: caller, LabelID: id, URI: uri}),
		event.MustNew(event.LabelAllowed{LabelID: id, Allowed: false}),
	}, nil
}

// Allow sets the allowed flag. Authority only. A LabelAllowed event is
// emitted even when the value does not change.
func (r *Registry) Allow(caller identity.Address, labelID uint64, allowed bool) ([]event.Event, error) {
	if caller != r.authority {
		return nil, &UnauthorizedError{Caller: caller}
	}
	if _, ok := r.labels[labelID]; !ok {
		return nil, &UnknownLabelError{LabelID: labelID}
	}
	return []event.Event{
		event.MustNew(event.LabelAllowed{LabelID: labelID, Allowed: allowed}),
	}, nil
}

// Transfer always fails: labels are bound to the certifier that submitted
// them.
func (r *Registry) Transfer(caller, to identity.Address, labelID uint64) error {
	return &NotTransferableError{Caller: caller}
}

// OwnerOf returns the submitting certifier.
func (r *Registry) OwnerOf(labelID uint64) (identity.Address, error) {
	rec, ok := r.labels[labelID]
	if !ok {
		return identity.Zero, &UnknownLabelError{LabelID: labelID}
	}
	return rec.owner, nil
}

// URI returns the label's metadata pointer.
func (r *Registry) URI(labelID uint64) (string, error) {
	rec, ok := r.labels[labelID]
	if !ok {
		return "", &UnknownLabelError{LabelID: labelID}
	}
	return rec.uri, nil
}

// IsAllowed reports whether the label is currently allowed. Unknown ids are
// simply not allowed, they do not error.
func (r *Registry) IsAllowed(labelID uint64) bool {
	rec, ok := r.labels[labelID]
	return ok && rec.allowed
}

// IsAllowedFor reports whether the label is allowed and owned by certifier.
// This is the authorization gate the certification ledger uses.
func (r *Registry) IsAllowedFor(labelID uint64, certifier identity.Address) bool {
	rec, ok := r.labels[labelID]
	return ok && rec.allowed && rec.owner == certifier
}

// Count returns the number of submitted labels.
func (r *Registry) Count() uint64 {
	return r.nextID
}

// Apply folds one event into registry state. Events of other components are
// ignored.
func (r *Registry) Apply(ev event.Event) error {
	switch ev.Kind {
	case event.KindLabelSubmitted:
		var p event.LabelSubmitted
		if err := ev.Decode(&p); err != nil {
			return err
		}
		r.labels[p.LabelID] = &record{owner: p.Certifier, uri: p.URI}
		if p.LabelID >= r.nextID {
			r.nextID = p.LabelID + 1
		}
	case event.KindLabelAllowed:
		var p event.LabelAllowed
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if rec, ok := r.labels[p.LabelID]; ok {
			rec.allowed = p.Allowed
		}
	}
	return nil
}
