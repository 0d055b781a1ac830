package ledger

import (
	"context"

	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
	"github.com/ncoquelet/RobinWood/merchandise"
)

// Label registry operations.

// SubmitLabel registers a new certification scheme owned by caller.
func (l *Ledger) SubmitLabel(ctx context.Context, caller identity.Address, uri string) (uint64, error) {
	var id uint64
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		var events []event.Event
		var err error
		id, events, err = l.labels.Submit(caller, uri)
		return events, err
	})
	return id, err
}

// AllowLabel flips the label's allowed flag. Authority only.
func (l *Ledger) AllowLabel(ctx context.Context, caller identity.Address, labelID uint64, allowed bool) error {
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		return l.labels.Allow(caller, labelID, allowed)
	})
	return err
}

// TransferLabel always rejects: labels are non-transferable.
func (l *Ledger) TransferLabel(ctx context.Context, caller, to identity.Address, labelID uint64) error {
	return l.labels.Transfer(caller, to, labelID)
}

// LabelOwnerOf returns the submitting certifier.
func (l *Ledger) LabelOwnerOf(labelID uint64) (identity.Address, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.labels.OwnerOf(labelID)
}

// LabelURI returns the label's metadata pointer.
func (l *Ledger) LabelURI(labelID uint64) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.labels.URI(labelID)
}

// IsAllowed reports whether the label is allowed; unknown ids are false.
func (l *Ledger) IsAllowed(labelID uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.labels.IsAllowed(labelID)
}

// IsAllowedFor reports whether the label is allowed and owned by certifier.
func (l *Ledger) IsAllowedFor(labelID uint64, certifier identity.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.labels.IsAllowedFor(labelID, certifier)
}

// LabelCount returns the number of submitted labels.
func (l *Ledger) LabelCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.labels.Count()
}

// Certification ledger operations.

// Certify grants producer the certification for labelID.
func (l *Ledger) Certify(ctx context.Context, caller, producer identity.Address, labelID uint64) error {
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		return l.certs.Certify(caller, producer, labelID)
	})
	return err
}

// Revoke clears producer's certification for labelID.
func (l *Ledger) Revoke(ctx context.Context, caller, producer identity.Address, labelID uint64) error {
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		return l.certs.Revoke(caller, producer, labelID)
	})
	return err
}

// TransferCertification always rejects: certifications are non-transferable.
func (l *Ledger) TransferCertification(ctx context.Context, caller, to identity.Address, labelID uint64) error {
	return l.certs.Transfer(caller, to, labelID)
}

// IsCertified reports whether producer holds the certification.
func (l *Ledger) IsCertified(producer identity.Address, labelID uint64) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.certs.IsCertified(producer, labelID)
}

// CertificationBalance mirrors IsCertified as a 0|1 unit count.
func (l *Ledger) CertificationBalance(producer identity.Address, labelID uint64) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.certs.BalanceOf(producer, labelID)
}

// Item registry operations.

// MintWithLabel mints a root item under labelID.
func (l *Ledger) MintWithLabel(ctx context.Context, caller identity.Address, uri string, labelID uint64) (uint64, error) {
	var id uint64
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		var events []event.Event
		var err error
		id, events, err = l.items.MintWithLabel(caller, uri, labelID)
		return events, err
	})
	return id, err
}

// MintWithParent mints a derived item consuming one parent.
func (l *Ledger) MintWithParent(ctx context.Context, caller identity.Address, uri string, parentID uint64) (uint64, error) {
	return l.MintWithParents(ctx, caller, uri, []uint64{parentID})
}

// MintWithParents mints a derived item consuming every listed parent,
// all-or-nothing.
func (l *Ledger) MintWithParents(ctx context.Context, caller identity.Address, uri string, parentIDs []uint64) (uint64, error) {
	var id uint64
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		var events []event.Event
		var err error
		id, events, err = l.items.MintWithParents(caller, uri, parentIDs)
		return events, err
	})
	return id, err
}

// MintBatchWithParent mints one child per URI from a shared parent, which is
// destroyed once after all children exist.
func (l *Ledger) MintBatchWithParent(ctx context.Context, caller identity.Address, uris []string, parentID uint64) ([]uint64, error) {
	var ids []uint64
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		var events []event.Event
		var err error
		ids, events, err = l.items.MintBatchWithParent(caller, uris, parentID)
		return events, err
	})
	return ids, err
}

// TransferItem moves custody directly; rejected while the item is mandated.
func (l *Ledger) TransferItem(ctx context.Context, caller, to identity.Address, itemID uint64) error {
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		return l.items.Transfer(caller, to, itemID)
	})
	return err
}

// OwnerOf returns the current custodian; destroyed items do not exist.
func (l *Ledger) OwnerOf(itemID uint64) (identity.Address, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items.OwnerOf(itemID)
}

// ParentsOf returns the consumed parent set, empty for label-rooted items.
func (l *Ledger) ParentsOf(itemID uint64) ([]uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items.ParentsOf(itemID)
}

// ItemURI returns the item's metadata pointer.
func (l *Ledger) ItemURI(itemID uint64) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items.URI(itemID)
}

// ItemCount returns the number of items ever minted.
func (l *Ledger) ItemCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items.Count()
}

// Custody transfer protocol.

// MandateTransport assigns transporter to deliver itemID to recipient.
func (l *Ledger) MandateTransport(ctx context.Context, caller, transporter, recipient identity.Address, itemID uint64) error {
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		return l.items.Mandate(caller, transporter, recipient, itemID)
	})
	return err
}

// AcceptTransport advances a CREATED mandate to ACCEPTED; the caller is the
// transporter.
func (l *Ledger) AcceptTransport(ctx context.Context, caller identity.Address, itemID uint64, acc merchandise.Acceptance) error {
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		return l.items.Accept(caller, itemID, acc)
	})
	return err
}

// ValidateTransport closes an ACCEPTED mandate and transfers custody from
// the principal to the recipient.
func (l *Ledger) ValidateTransport(ctx context.Context, caller identity.Address, itemID uint64, transporter identity.Address, salt merchandise.Salt) error {
	_, err := l.mutate(ctx, func() ([]event.Event, error) {
		return l.items.Validate(caller, itemID, transporter, salt)
	})
	return err
}

// IsMandate reports an existing mandate for the exact triple.
func (l *Ledger) IsMandate(itemID uint64, transporter, recipient identity.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items.IsMandate(itemID, transporter, recipient)
}

// IsMandateAccepted reports whether the transporter accepted the delivery.
func (l *Ledger) IsMandateAccepted(itemID uint64, transporter identity.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items.IsMandateAccepted(itemID, transporter)
}

// IsTransportValidated reports whether the delivery completed.
func (l *Ledger) IsTransportValidated(itemID uint64, transporter identity.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.items.IsTransportValidated(itemID, transporter)
}
