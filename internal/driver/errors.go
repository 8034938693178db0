package driver

import (
	"errors"
	"fmt"
)

// RunErrorCode classifies execution failures.
type RunErrorCode string

const (
	// WalletUnavailable means no wallet was supplied for the run.
	WalletUnavailable RunErrorCode = "wallet_unavailable"
	// WalletCapabilityMissing means the wallet lacks a capability the
	// selected mode requires, such as message signing for per.
	WalletCapabilityMissing RunErrorCode = "wallet_capability_missing"
	// IntegrityCheckFailed means the TEE endpoint failed its attestation
	// probe. Fail-closed: nothing was signed.
	IntegrityCheckFailed RunErrorCode = "integrity_check_failed"
	// AuthFailed means the per challenge/response handshake failed.
	AuthFailed RunErrorCode = "auth_failed"
	// TransactionFailed means a step's transaction could not be signed,
	// submitted, or confirmed.
	TransactionFailed RunErrorCode = "transaction_failed"
)

// RunError is an execution-phase failure. Step carries the node id of the
// failing step where one exists; pre-flight failures leave it empty.
type RunError struct {
	Code RunErrorCode
	Step string
	Err  error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("%s (step %s): %v", e.Code, e.Step, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

// Unwrap supports errors.Is/As chains.
func (e *RunError) Unwrap() error { return e.Err }

// AsRunError extracts a RunError from an error chain.
func AsRunError(err error) (*RunError, bool) {
	var re *RunError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
