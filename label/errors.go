package label

import (
	"fmt"

	"github.com/ncoquelet/RobinWood/identity"
)

// Rejections are typed so callers can branch with errors.As and inspect the
// offending ids/addresses; messages are for humans only.

// UnauthorizedError: caller is not the system authority.
type UnauthorizedError struct {
	Caller identity.Address
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("label: caller %s is not the authority", e.Caller)
}

// UnknownLabelError: the label id was never submitted.
type UnknownLabelError struct {
	LabelID uint64
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("label: unknown label %d", e.LabelID)
}

// NotTransferableError: labels cannot change owners.
type NotTransferableError struct {
	Caller identity.Address
}

func (e *NotTransferableError) Error() string {
	return fmt.Sprintf("label: labels are not transferable (caller %s)", e.Caller)
}

// InvalidCallerError: the zero address cannot act.
type InvalidCallerError struct {
	Caller identity.Address
}

func (e *InvalidCallerError) Error() string {
	return fmt.Sprintf("label: invalid caller %s", e.Caller)
}
