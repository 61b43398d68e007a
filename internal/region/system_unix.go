//go:build unix

package region

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// SystemProvider reserves a single large anonymous mapping up front with
// mmap and hands out pages from it on Extend. Reserving once and bumping a
// high-water mark mirrors how sbrk/brk never relocate memory that has
// already been returned to a caller.
type SystemProvider struct {
	mem  []byte // kept alive to pin the mapping and for Munmap
	base uintptr
	used uintptr
}

// NewSystemProvider mmaps capacity bytes of anonymous, private memory. A
// capacity of 0 selects DefaultCapacity.
func NewSystemProvider(capacity uintptr) (*SystemProvider, error) {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	mem, err := unix.Mmap(-1, 0, int(capacity), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, &Error{Code: ErrorOutOfMemory, Message: fmt.Sprintf("mmap: %v", err)}
	}
	return &SystemProvider{mem: mem, base: uintptr(unsafe.Pointer(&mem[0]))}, nil
}

func (p *SystemProvider) Extend(incrementBytes uintptr) (uintptr, error) {
	if incrementBytes == 0 {
		return 0, &Error{Code: ErrorInvalidSize, Message: "increment must be > 0"}
	}
	if p.used+incrementBytes > uintptr(len(p.mem)) {
		return 0, &Error{Code: ErrorCapacityExceeded, Message: "mmap reservation exhausted"}
	}
	base := p.base + p.used
	p.used += incrementBytes
	return base, nil
}

func (p *SystemProvider) Low() uintptr  { return p.base }
func (p *SystemProvider) High() uintptr { return p.base + p.used }
func (p *SystemProvider) Size() uintptr { return p.used }

// Close unmaps the reservation. Not part of the Provider interface; owners
// of a concrete SystemProvider call it during shutdown.
func (p *SystemProvider) Close() error {
	return unix.Munmap(p.mem)
}
