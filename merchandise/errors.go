package merchandise

import (
	"errors"
	"fmt"

	"github.com/ncoquelet/RobinWood/identity"
)

// Typed rejections, one per precondition. Branch with errors.As; messages
// are human-readable and may change.

// NotCertifiedError: mint-from-label attempted by an uncertified producer.
type NotCertifiedError struct {
	Caller  identity.Address
	LabelID uint64
}

func (e *NotCertifiedError) Error() string {
	return fmt.Sprintf("merchandise: %s is not certified for label %d", e.Caller, e.LabelID)
}

// NotOwnerError: caller does not hold current custody of the item.
type NotOwnerError struct {
	Caller identity.Address
	ItemID uint64
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("merchandise: %s does not own item %d", e.Caller, e.ItemID)
}

// NonexistentTokenError: the item was never minted or has been destroyed.
type NonexistentTokenError struct {
	ItemID uint64
}

func (e *NonexistentTokenError) Error() string {
	return fmt.Sprintf("merchandise: item %d does not exist", e.ItemID)
}

// NotTransferableError: direct transfer attempted on an item under an
// unresolved mandate.
type NotTransferableError struct {
	Caller identity.Address
	ItemID uint64
}

func (e *NotTransferableError) Error() string {
	return fmt.Sprintf("merchandise: item %d is under mandate and not transferable (caller %s)", e.ItemID, e.Caller)
}

// InvalidTransporterError: mandate names a degenerate transporter (zero or
// the owner itself).
type InvalidTransporterError struct {
	Address identity.Address
}

func (e *InvalidTransporterError) Error() string {
	return fmt.Sprintf("merchandise: invalid transporter %s", e.Address)
}

// InvalidRecipientError: mandate or transfer names a degenerate recipient
// (zero or the owner itself).
type InvalidRecipientError struct {
	Address identity.Address
}

func (e *InvalidRecipientError) Error() string {
	return fmt.Sprintf("merchandise: invalid recipient %s", e.Address)
}

// NotMandatedError: accept attempted with no matching CREATED mandate.
type NotMandatedError struct {
	Caller identity.Address
	ItemID uint64
}

func (e *NotMandatedError) Error() string {
	return fmt.Sprintf("merchandise: no mandate for transporter %s on item %d", e.Caller, e.ItemID)
}

// InvalidSignatureError: the acceptance signature does not bind the
// transporter to this exact delivery.
type InvalidSignatureError struct {
	Transporter identity.Address
	ItemID      uint64
	Cause       error
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("merchandise: invalid acceptance signature from %s for item %d: %v", e.Transporter, e.ItemID, e.Cause)
}

func (e *InvalidSignatureError) Unwrap() error { return e.Cause }

// NotAcceptedError: validate attempted before the transporter accepted, or
// with a salt that does not match the accepted signature.
type NotAcceptedError struct {
	Caller identity.Address
	ItemID uint64
}

func (e *NotAcceptedError) Error() string {
	return fmt.Sprintf("merchandise: transport of item %d not accepted (caller %s)", e.ItemID, e.Caller)
}

// NotRecieverError: validate attempted by someone other than the mandate's
// named recipient. The spelling is the protocol's historical name for this
// rejection and is kept for compatibility.
type NotRecieverError struct {
	Caller identity.Address
	ItemID uint64
}

func (e *NotRecieverError) Error() string {
	return fmt.Sprintf("merchandise: %s is not the recipient for item %d", e.Caller, e.ItemID)
}

// AlreadyAcceptedError: re-mandating a (item, transporter) pair after the
// transporter has committed a signature.
type AlreadyAcceptedError struct {
	Transporter identity.Address
	ItemID      uint64
}

func (e *AlreadyAcceptedError) Error() string {
	return fmt.Sprintf("merchandise: transporter %s already accepted item %d", e.Transporter, e.ItemID)
}

// Argument-shape rejections.
var (
	ErrNoParents = errors.New("merchandise: at least one parent is required")
	ErrNoURIs    = errors.New("merchandise: at least one metadata URI is required")
)
