// Package region implements the "sbrk-like" region provider the allocator
// treats as an external collaborator: a single contiguous byte range that
// only ever grows, never moves, and never shrinks.
package region

import "fmt"

// Provider grows and reports a managed byte range. Extend must preserve
// previously-returned bytes verbatim: once an address has been handed back
// to a caller, it stays valid (and at the same offset) for the lifetime of
// the Provider. Low, High and Size are informational only; the allocator's
// hot path never calls them.
type Provider interface {
	// Extend grows the region by incrementBytes and returns the address
	// of the first newly-added byte.
	Extend(incrementBytes uintptr) (base uintptr, err error)
	Low() uintptr
	High() uintptr
	Size() uintptr
}

// ErrorCode enumerates region-provider failure kinds.
type ErrorCode int

const (
	ErrorOutOfMemory ErrorCode = iota
	ErrorInvalidSize
	ErrorCapacityExceeded
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorOutOfMemory:
		return "OutOfMemory"
	case ErrorInvalidSize:
		return "InvalidSize"
	case ErrorCapacityExceeded:
		return "CapacityExceeded"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Error reports a region extension failure.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("region: %s: %s", e.Code, e.Message)
}
