package certification

import (
	"fmt"

	"github.com/ncoquelet/RobinWood/identity"
)

// NotAllowedLabelError: caller does not own the label, or the label is not
// in the allowed state (for operations that require it).
type NotAllowedLabelError struct {
	Caller  identity.Address
	LabelID uint64
}

func (e *NotAllowedLabelError) Error() string {
	return fmt.Sprintf("certification: label %d not allowed for caller %s", e.LabelID, e.Caller)
}

// NotTransferableError: certifications cannot move between producers.
type NotTransferableError struct {
	Caller identity.Address
}

func (e *NotTransferableError) Error() string {
	return fmt.Sprintf("certification: certifications are not transferable (caller %s)", e.Caller)
}
