// Package blas defines the boundary to an external BLAS backend. The
// backend consumes already-materialized, fixed-shape float32 buffers and
// reports vendor status codes; this package translates those codes into the
// uniform error channel the runtime propagates, and registers the kernels
// that bridge encoded program nodes to backend calls.
//
// The numerical routines themselves, GPU memory management and
// stream/context lifecycle all live behind the Backend interface and are
// not modeled here.
package blas

import "fmt"

// Status is a vendor BLAS status code. Values mirror the cuBLAS status
// enum.
type Status int32

const (
	StatusSuccess         Status = 0
	StatusNotInitialized  Status = 1
	StatusAllocFailed     Status = 3
	StatusInvalidValue    Status = 7
	StatusArchMismatch    Status = 8
	StatusMappingError    Status = 11
	StatusExecutionFailed Status = 13
	StatusInternalError   Status = 14
	StatusNotSupported    Status = 15
)

var statusNames = map[Status]string{
	StatusSuccess:         "success",
	StatusNotInitialized:  "not initialized",
	StatusAllocFailed:     "allocation failed",
	StatusInvalidValue:    "invalid value",
	StatusArchMismatch:    "architecture mismatch",
	StatusMappingError:    "mapping error",
	StatusExecutionFailed: "execution failed",
	StatusInternalError:   "internal error",
	StatusNotSupported:    "not supported",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int32(s))
}

// StatusError reports a backend call that returned a non-success status.
type StatusError struct {
	Op     string
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("blas: %s failed: %s", e.Op, e.Status)
}

// statusToError translates a backend status into the error channel: nil on
// success, a *StatusError otherwise.
func statusToError(op string, s Status) error {
	if s == StatusSuccess {
		return nil
	}
	return &StatusError{Op: op, Status: s}
}
