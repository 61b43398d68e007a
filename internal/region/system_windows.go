//go:build windows

package region

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// SystemProvider reserves and commits a single large region up front with
// VirtualAlloc and hands out pages from it on Extend.
type SystemProvider struct {
	base uintptr
	size uintptr
	used uintptr
}

// NewSystemProvider reserves and commits capacity bytes. A capacity of 0
// selects DefaultCapacity.
func NewSystemProvider(capacity uintptr) (*SystemProvider, error) {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	addr, err := windows.VirtualAlloc(0, capacity, windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, &Error{Code: ErrorOutOfMemory, Message: fmt.Sprintf("VirtualAlloc: %v", err)}
	}
	return &SystemProvider{base: addr, size: capacity}, nil
}

func (p *SystemProvider) Extend(incrementBytes uintptr) (uintptr, error) {
	if incrementBytes == 0 {
		return 0, &Error{Code: ErrorInvalidSize, Message: "increment must be > 0"}
	}
	if p.used+incrementBytes > p.size {
		return 0, &Error{Code: ErrorCapacityExceeded, Message: "VirtualAlloc reservation exhausted"}
	}
	base := p.base + p.used
	p.used += incrementBytes
	return base, nil
}

func (p *SystemProvider) Low() uintptr  { return p.base }
func (p *SystemProvider) High() uintptr { return p.base + p.used }
func (p *SystemProvider) Size() uintptr { return p.used }

// Close releases the reservation. Not part of the Provider interface;
// owners of a concrete SystemProvider call it during shutdown.
func (p *SystemProvider) Close() error {
	return windows.VirtualFree(p.base, 0, windows.MEM_RELEASE)
}
