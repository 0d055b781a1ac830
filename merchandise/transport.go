package merchandise

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/holiman/uint256"

	"github.com/ncoquelet/RobinWood/event"
	"github.com/ncoquelet/RobinWood/identity"
)

// SaltSize is the length of a transport salt in bytes.
const SaltSize = 32

// Salt is the single-use random value binding an acceptance signature to one
// specific delivery instance.
type Salt [SaltSize]byte

// NewSalt draws a fresh random salt. A nil reader uses crypto/rand.
func NewSalt(r io.Reader) (Salt, error) {
	if r == nil {
		r = rand.Reader
	}
	var s Salt
	if _, err := io.ReadFull(r, s[:]); err != nil {
		return Salt{}, err
	}
	return s, nil
}

// ParseSalt decodes a hex salt.
func ParseSalt(s string) (Salt, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Salt{}, fmt.Errorf("merchandise: invalid salt: %w", err)
	}
	if len(b) != SaltSize {
		return Salt{}, fmt.Errorf("merchandise: salt must be %d bytes, got %d", SaltSize, len(b))
	}
	var out Salt
	copy(out[:], b)
	return out, nil
}

func (s Salt) String() string {
	return hex.EncodeToString(s[:])
}

// SigningPayload is the byte layout an acceptance signature covers: the item
// id as a 32-byte big-endian integer, the transporter and recipient
// addresses, then the salt, tightly packed. Any change here breaks every
// deployed signer, so treat the layout as frozen.
func SigningPayload(itemID uint64, transporter, recipient identity.Address, salt Salt) []byte {
	id := uint256.NewInt(itemID).Bytes32()
	buf := make([]byte, 0, 32+2*identity.AddressSize+SaltSize)
	buf = append(buf, id[:]...)
	buf = append(buf, transporter[:]...)
	buf = append(buf, recipient[:]...)
	buf = append(buf, salt[:]...)
	return buf
}

// Acceptance is what a transporter presents to accept a mandate: the salt
// generated by the recipient-side tooling, and the transporter's signature
// over SigningPayload.
type Acceptance struct {
	Salt Salt
	Sig  []byte
}

type mandateKey struct {
	itemID      uint64
	transporter identity.Address
}

type mandate struct {
	recipient identity.Address
	principal identity.Address
	status    event.TransportStatus
	salt      Salt
	hasSalt   bool
}

// Mandate assigns transporter to deliver itemID to recipient. Owner only.
// Re-mandating the same (item, transporter) pair while still CREATED re-arms
// it (recipient and principal refreshed, any stored salt dropped). While the
// transporter holds an ACCEPTED mandate re-mandating is rejected: the
// committed signature would be silently discarded. Once the delivery is
// VALIDATED that signature is spent, so the pair becomes mandatable again
// and multi-leg chains can reuse the same carrier.
func (r *Registry) Mandate(caller, transporter, recipient identity.Address, itemID uint64) ([]event.Event, error) {
	it, ok := r.items[itemID]
	if !ok || it.destroyed {
		return nil, &NonexistentTokenError{ItemID: itemID}
	}
	if it.owner != caller {
		return nil, &NotOwnerError{Caller: caller, ItemID: itemID}
	}
	if transporter.IsZero() || transporter == caller {
		return nil, &InvalidTransporterError{Address: transporter}
	}
	if recipient.IsZero() || recipient == caller {
		return nil, &InvalidRecipientError{Address: recipient}
	}
	if m, ok := r.mandates[mandateKey{itemID: itemID, transporter: transporter}]; ok {
		if m.status == event.TransportAccepted {
			return nil, &AlreadyAcceptedError{Transporter: transporter, ItemID: itemID}
		}
	}
	return []event.Event{
		event.MustNew(event.Transport{
			ItemID:      itemID,
			Owner:       caller,
			Transporter: transporter,
			Recipient:   recipient,
			Status:      event.TransportCreated,
		}),
	}, nil
}

// Accept advances a CREATED mandate to ACCEPTED. The caller is the
// transporter; the signature must bind (item, transporter, recipient, salt)
// exactly, so it cannot be replayed for another item, another recipient or
// another salt.
func (r *Registry) Accept(caller identity.Address, itemID uint64, acc Acceptance) ([]event.Event, error) {
	m, ok := r.mandates[mandateKey{itemID: itemID, transporter: caller}]
	if !ok || m.status != event.TransportCreated {
		return nil, &NotMandatedError{Caller: caller, ItemID: itemID}
	}
	payload := SigningPayload(itemID, caller, m.recipient, acc.Salt)
	if err := r.verifier.Verify(caller, payload, acc.Sig); err != nil {
		return nil, &InvalidSignatureError{Transporter: caller, ItemID: itemID, Cause: err}
	}
	return []event.Event{
		event.MustNew(event.Transport{
			ItemID:      itemID,
			Owner:       m.principal,
			Transporter: caller,
			Recipient:   m.recipient,
			Status:      event.TransportAccepted,
			Salt:        acc.Salt.String(),
		}),
	}, nil
}

// Validate closes an ACCEPTED mandate. The caller must be the named
// recipient and must present the salt embedded in the accepted signature.
// Ownership moves from the principal to the recipient through the privileged
// path (the VALIDATED event's apply).
func (r *Registry) Validate(caller identity.Address, itemID uint64, transporter identity.Address, salt Salt) ([]event.Event, error) {
	m, ok := r.mandates[mandateKey{itemID: itemID, transporter: transporter}]
	if !ok {
		return nil, &NotAcceptedError{Caller: caller, ItemID: itemID}
	}
	if caller != m.recipient {
		return nil, &NotRecieverError{Caller: caller, ItemID: itemID}
	}
	if m.status != event.TransportAccepted || !m.hasSalt || m.salt != salt {
		return nil, &NotAcceptedError{Caller: caller, ItemID: itemID}
	}
	return []event.Event{
		event.MustNew(event.Transport{
			ItemID:      itemID,
			Owner:       m.principal,
			Transporter: transporter,
			Recipient:   m.recipient,
			Status:      event.TransportValidated,
		}),
	}, nil
}

// IsMandate reports whether a mandate for the exact (item, transporter,
// recipient) triple exists in any stage.
func (r *Registry) IsMandate(itemID uint64, transporter, recipient identity.Address) bool {
	m, ok := r.mandates[mandateKey{itemID: itemID, transporter: transporter}]
	return ok && m.recipient == recipient && m.status >= event.TransportCreated
}

// IsMandateAccepted reports whether the transporter has accepted (or already
// completed) the delivery.
func (r *Registry) IsMandateAccepted(itemID uint64, transporter identity.Address) bool {
	m, ok := r.mandates[mandateKey{itemID: itemID, transporter: transporter}]
	return ok && m.status >= event.TransportAccepted
}

// IsTransportValidated reports whether the delivery completed.
func (r *Registry) IsTransportValidated(itemID uint64, transporter identity.Address) bool {
	m, ok := r.mandates[mandateKey{itemID: itemID, transporter: transporter}]
	return ok && m.status == event.TransportValidated
}

func (r *Registry) applyTransport(p event.Transport) error {
	key := mandateKey{itemID: p.ItemID, transporter: p.Transporter}
	switch p.Status {
	case event.TransportCreated:
		r.mandates[key] = &mandate{
			recipient: p.Recipient,
			principal: p.Owner,
			status:    event.TransportCreated,
		}
	case event.TransportAccepted:
		m, ok := r.mandates[key]
		if !ok {
			return fmt.Errorf("merchandise: ACCEPTED transport without mandate for item %d", p.ItemID)
		}
		salt, err := ParseSalt(p.Salt)
		if err != nil {
			return err
		}
		m.status = event.TransportAccepted
		m.salt = salt
		m.hasSalt = true
	case event.TransportValidated:
		m, ok := r.mandates[key]
		if !ok {
			return fmt.Errorf("merchandise: VALIDATED transport without mandate for item %d", p.ItemID)
		}
		m.status = event.TransportValidated
		if it, ok := r.items[p.ItemID]; ok {
			it.owner = m.recipient
		}
	default:
		return fmt.Errorf("merchandise: unknown transport status %d", p.Status)
	}
	return nil
}
