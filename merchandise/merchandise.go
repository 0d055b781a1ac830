// Package merchandise implements the item registry (the provenance DAG) and
// the mandate-based custody transfer protocol.
//
// Both live in one package because validating a transport performs the
// privileged ownership transfer that the public Transfer entry point must
// not be able to perform.
//
// Like the other state components, commands validate against current state
// and return events; Apply folds events back in. The ledger serializes both.
package merchandise

import (
	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
)

// CertGate is the slice of the certification ledger minting depends on.
type CertGate interface {
	IsCertified(producer identity.Address, labelID uint64) bool
}

type item struct {
	owner     identity.Address
	uri       string
	parents   []uint64
	destroyed bool
}

// Registry holds the item table and the mandate table.
type Registry struct {
	certs    CertGate
	verifier identity.Verifier
	items    map[uint64]*item
	nextID   uint64
	mandates map[mandateKey]*mandate
}

// NewRegistry creates an empty registry. The verifier is the pluggable
// capability used to check transport acceptance signatures.
func NewRegistry(certs CertGate, verifier identity.Verifier) *Registry {
	return &Registry{
		certs:    certs,
		verifier: verifier,
		items:    make(map[uint64]*item),
		mandates: make(map[mandateKey]*mandate),
	}
}

// MintWithLabel mints a root item attesting origin under labelID. The caller
// must be certified for that label.
func (r *Registry) MintWithLabel(caller identity.Address, uri string, labelID uint64) (uint64, []event.Event, error) {
	if !r.certs.IsCertified(caller, labelID) {
		return 0, nil, &NotCertifiedError{Caller: caller, LabelID: labelID}
	}
	id := r.nextID
	return id, []event.Event{
		event.MustNew(event.MintedWithLabel{Minter: caller, LabelID: labelID, ItemID: id, URI: uri}),
	}, nil
}

// MintWithParent mints a derived item consuming a single parent.
func (r *Registry) MintWithParent(caller identity.Address, uri string, parentID uint64) (uint64, []event.Event, error) {
	return r.MintWithParents(caller, uri, []uint64{parentID})
}

// MintWithParents mints a derived item consuming every listed parent. The
// caller must own all of them, and none may sit under an unresolved mandate;
// on any failure nothing is minted and nothing is destroyed.
func (r *Registry) MintWithParents(caller identity.Address, uri string, parentIDs []uint64) (uint64, []event.Event, error) {
	if len(parentIDs) == 0 {
		return 0, nil, ErrNoParents
	}
	if err := r.checkParents(caller, parentIDs); err != nil {
		return 0, nil, err
	}

	id := r.nextID
	parents := make([]uint64, len(parentIDs))
	copy(parents, parentIDs)
	events := []event.Event{
		event.MustNew(event.Minted{Minter: caller, Owner: caller, ParentIDs: parents, ItemID: id, URI: uri}),
	}
	for _, p := range parents {
		events = append(events, event.MustNew(event.Destroyed{ItemID: p}))
	}
	return id, events, nil
}

// MintBatchWithParent mints one child per URI from a single shared parent.
// The parent is destroyed exactly once, after all children are created.
func (r *Registry) MintBatchWithParent(caller identity.Address, uris []string, parentID uint64) ([]uint64, []event.Event, error) {
	if len(uris) == 0 {
		return nil, nil, ErrNoURIs
	}
	if err := r.checkParents(caller, []uint64{parentID}); err != nil {
		return nil, nil, err
	}

	ids := make([]uint64, len(uris))
	events := make([]event.Event, 0, len(uris)+1)
	for i, uri := range uris {
		ids[i] = r.nextID + uint64(i)
		events = append(events, event.MustNew(event.Minted{
			Minter:    caller,
			Owner:     caller,
			ParentIDs: []uint64{parentID},
			ItemID:    ids[i],
			URI:       uri,
		}))
	}
	events = append(events, event.MustNew(event.Destroyed{ItemID: parentID}))
	return ids, events, nil
}

func (r *Registry) checkParents(caller identity.Address, parentIDs []uint64) error {
	seen := make(map[uint64]bool, len(parentIDs))
	for _, p := range parentIDs {
		it, ok := r.items[p]
		if !ok || it.destroyed || seen[p] {
			// A repeated parent would already be consumed by the time it came
			// up again, so it gets the same rejection as a destroyed one.
			return &NonexistentTokenError{ItemID: p}
		}
		if it.owner != caller {
			return &NotOwnerError{Caller: caller, ItemID: p}
		}
		if r.hasUnresolvedMandate(p) {
			// Consuming the parent would destroy an item a transporter is
			// still expected to deliver.
			return &NotTransferableError{Caller: caller, ItemID: p}
		}
		seen[p] = true
	}
	return nil
}

// Transfer moves custody directly between owners. It is rejected while the
// item is under any unresolved mandate; mandated custody changes go through
// ValidateTransport only.
func (r *Registry) Transfer(caller, to identity.Address, itemID uint64) ([]event.Event, error) {
	it, ok := r.items[itemID]
	if !ok || it.destroyed {
		return nil, &NonexistentTokenError{ItemID: itemID}
	}
	if it.owner != caller {
		return nil, &NotOwnerError{Caller: caller, ItemID: itemID}
	}
	if to.IsZero() || to == caller {
		return nil, &InvalidRecipientError{Address: to}
	}
	if r.hasUnresolvedMandate(itemID) {
		return nil, &NotTransferableError{Caller: caller, ItemID: itemID}
	}
	return []event.Event{
		event.MustNew(event.Transferred{ItemID: itemID, From: caller, To: to}),
	}, nil
}

func (r *Registry) hasUnresolvedMandate(itemID uint64) bool {
	for key, m := range r.mandates {
		if key.itemID != itemID {
			continue
		}
		if m.status == event.TransportCreated || m.status == event.TransportAccepted {
			return true
		}
	}
	return false
}

// OwnerOf returns the current custodian. Destroyed items no longer exist.
func (r *Registry) OwnerOf(itemID uint64) (identity.Address, error) {
	it, ok := r.items[itemID]
	if !ok || it.destroyed {
		return identity.Zero, &NonexistentTokenError{ItemID: itemID}
	}
	return it.owner, nil
}

// ParentsOf returns the parent set, empty for label-rooted items. Provenance
// stays queryable after destruction: history is immutable.
func (r *Registry) ParentsOf(itemID uint64) ([]uint64, error) {
	it, ok := r.items[itemID]
	if !ok {
		return nil, &NonexistentTokenError{ItemID: itemID}
	}
	out := make([]uint64, len(it.parents))
	copy(out, it.parents)
	return out, nil
}

// URI returns the item's metadata pointer, immutable after mint and, like
// parents, still readable for destroyed items.
func (r *Registry) URI(itemID uint64) (string, error) {
	it, ok := r.items[itemID]
	if !ok {
		return "", &NonexistentTokenError{ItemID: itemID}
	}
	return it.uri, nil
}

// Count returns the number of items ever minted, destroyed ones included.
func (r *Registry) Count() uint64 {
	return r.nextID
}

// Apply folds one event into registry state.
func (r *Registry) Apply(ev event.Event) error {
	switch ev.Kind {
	case event.KindMintedWithLabel:
		var p event.MintedWithLabel
		if err := ev.Decode(&p); err != nil {
			return err
		}
		r.items[p.ItemID] = &item{owner: p.Minter, uri: p.URI}
		if p.ItemID >= r.nextID {
			r.nextID = p.ItemID + 1
		}
	case event.KindMinted:
		var p event.Minted
		if err := ev.Decode(&p); err != nil {
			return err
		}
		r.items[p.ItemID] = &item{owner: p.Owner, uri: p.URI, parents: p.ParentIDs}
		if p.ItemID >= r.nextID {
			r.nextID = p.ItemID + 1
		}
	case event.KindDestroyed:
		var p event.Destroyed
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if it, ok := r.items[p.ItemID]; ok {
			it.destroyed = true
		}
	case event.KindTransferred:
		var p event.Transferred
		if err := ev.Decode(&p); err != nil {
			return err
		}
		if it, ok := r.items[p.ItemID]; ok {
			it.owner = p.To
		}
	case event.KindTransport:
		var p event.Transport
		if err := ev.Decode(&p); err != nil {
			return err
		}
		return r.applyTransport(p)
	}
	return nil
}
