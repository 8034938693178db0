package ix

import (
	"errors"
	"fmt"
)

// FieldError reports a missing or malformed step input. These are caller
// errors: the plan referenced a value the block cannot use, so the run is
// aborted rather than retried.
type FieldError struct {
	Block   string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: input %q: %s", e.Block, e.Field, e.Message)
}

// UnsupportedBlockError reports a step whose block id has no synthesis arm.
// Fatal to the whole run, not just the step: later steps may assume the
// missing instruction's on-chain effect.
type UnsupportedBlockError struct {
	Block string
}

// Error implements the error interface.
func (e *UnsupportedBlockError) Error() string {
	return fmt.Sprintf("unsupported block: %s", e.Block)
}

// AsFieldError extracts a FieldError from an error chain.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
