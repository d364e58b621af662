package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a document, request, client or tree node is absent.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by transactional creates that hit an existing document.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidPath is returned by tree stores for paths they cannot address.
	ErrInvalidPath = errors.New("invalid tree path")
)

// Approval taxonomy.
var (
	// ErrInvalidRequest means required request fields are missing. Not retriable.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAlreadyApproved means a client already exists for the principal. Not retriable.
	ErrAlreadyApproved = errors.New("already approved")
	// ErrProvisioningFailed means the device state write itself failed. Retriable.
	ErrProvisioningFailed = errors.New("provisioning failed")
	// ErrProvisioningUnverified means the write was acknowledged but the read back
	// did not observe it. Retriable with backoff.
	ErrProvisioningUnverified = errors.New("provisioning unverified")
)

// ProvisioningError reports a failure after the client record has been committed.
// It always carries the principal so that provisioning can be resumed for it.
type ProvisioningError struct {
	AuthUID string
	Step    SagaStep
	Err     error
	Cause   error
}

func (e *ProvisioningError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: principal %s at step %s", e.Err, e.AuthUID, e.Step)
	}
	return fmt.Sprintf("%s: principal %s at step %s: %v", e.Err, e.AuthUID, e.Step, e.Cause)
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *ProvisioningError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// InvalidRequestError names the request fields that failed validation.
type InvalidRequestError struct {
	RequestID string
	Fields    []string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request %q: missing %v", e.RequestID, e.Fields)
}

func (e *InvalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}
