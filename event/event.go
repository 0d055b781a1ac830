// Package event defines the append-only event stream emitted by the ledger.
//
// Every state transition appends exactly one event (mint-with-parents also
// appends one destruction event per consumed parent). Consumers rebuild any
// derived view by folding over the stream; they never poll live state.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ncoquelet/RobinWood/identity"
)

// Kind discriminates event payloads.
type Kind string

const (
	KindLabelSubmitted  Kind = "LabelSubmitted"
	KindLabelAllowed    Kind = "LabelAllowed"
	KindCertified       Kind = "Certified"
	KindMintedWithLabel Kind = "MintedWithLabel"
	KindMinted          Kind = "Minted"
	KindDestroyed       Kind = "Destroyed"
	KindTransport       Kind = "Transport"
	KindTransferred     Kind = "Transferred"
)

// TransportStatus is the mandate state carried by Transport events.
type TransportStatus uint8

const (
	TransportCreated TransportStatus = iota + 1
	TransportAccepted
	TransportValidated
)

func (s TransportStatus) String() string {
	switch s {
	case TransportCreated:
		return "CREATED"
	case TransportAccepted:
		return "ACCEPTED"
	case TransportValidated:
		return "VALIDATED"
	default:
		return fmt.Sprintf("TransportStatus(%d)", uint8(s))
	}
}

// Event is one entry of the ledger stream. Seq is assigned by the store on
// append and is contiguous from 1; ID is a globally unique identifier
// independent of the store.
type Event struct {
	ID   string          `json:"id"`
	Seq  uint64          `json:"seq,omitempty"`
	Time time.Time       `json:"time"`
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Typed payloads, one per Kind.

type LabelSubmitted struct {
	Certifier identity.Address `json:"certifier"`
	LabelID   uint64           `json:"labelId"`
	URI       string           `json:"uri"`
}

type LabelAllowed struct {
	LabelID uint64 `json:"labelId"`
	Allowed bool   `json:"allowed"`
}

type Certified struct {
	Producer  identity.Address `json:"producer"`
	LabelID   uint64           `json:"labelId"`
	Certified bool             `json:"certified"`
}

type MintedWithLabel struct {
	Minter  identity.Address `json:"minter"`
	LabelID uint64           `json:"labelId"`
	ItemID  uint64           `json:"itemId"`
	URI     string           `json:"uri"`
}

type Minted struct {
	Minter    identity.Address `json:"minter"`
	Owner     identity.Address `json:"owner"`
	ParentIDs []uint64         `json:"parentIds"`
	ItemID    uint64           `json:"itemId"`
	URI       string           `json:"uri"`
}

type Destroyed struct {
	ItemID uint64 `json:"itemId"`
}

type Transport struct {
	ItemID      uint64           `json:"itemId"`
	Owner       identity.Address `json:"owner"`
	Transporter identity.Address `json:"transporter"`
	Recipient   identity.Address `json:"recipient"`
	Status      TransportStatus  `json:"status"`
	// Salt is set on ACCEPTED events only (hex, 32 bytes). It is needed to
	// rebuild mandate state by replay.
	Salt string `json:"salt,omitempty"`
}

type Transferred struct {
	ItemID uint64           `json:"itemId"`
	From   identity.Address `json:"from"`
	To     identity.Address `json:"to"`
}

func kindOf(payload any) (Kind, error) {
	switch payload.(type) {
	case LabelSubmitted:
		return KindLabelSubmitted, nil
	case LabelAllowed:
		return KindLabelAllowed, nil
	case Certified:
		return KindCertified, nil
	case MintedWithLabel:
		return KindMintedWithLabel, nil
	case Minted:
		return KindMinted, nil
	case Destroyed:
		return KindDestroyed, nil
	case Transport:
		return KindTransport, nil
	case Transferred:
		return KindTransferred, nil
	default:
		return "", fmt.Errorf("event: unsupported payload type %T", payload)
	}
}

// New wraps a typed payload into an Event. Seq is left unset until the store
// assigns it.
func New(payload any) (Event, error) {
	kind, err := kindOf(payload)
	if err != nil {
		return Event{}, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:   uuid.NewString(),
		Time: time.Now().UTC(),
		Kind: kind,
		Data: data,
	}, nil
}

// MustNew is New for payloads built by the ledger itself, where a marshal
// failure is a programming error.
func MustNew(payload any) Event {
	ev, err := New(payload)
	if err != nil {
		panic(err)
	}
	return ev
}

// Decode unmarshals the payload into v, which must match the event kind.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// Marshal encodes the event for storage or the wire.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal decodes a stored event.
func Unmarshal(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if e.Kind == "" {
		return Event{}, fmt.Errorf("event: missing kind")
	}
	return e, nil
}
