package region

import (
	"fmt"
	"unsafe"
)

// DefaultCapacity is the virtual range a Provider reserves up front when
// the caller doesn't pick one. 64MiB comfortably covers typical trace
// replays without making every test allocate a huge array.
const DefaultCapacity = 64 * 1024 * 1024

// BufferProvider is a pure-Go Provider backed by a single pre-allocated
// slice. It never reallocates: Extend only ever advances a used-bytes
// high-water mark within the slice it was constructed with, so addresses
// already handed out stay valid and real for the lifetime of the
// Provider. This is what every allocator test in this repository uses in
// place of real OS memory.
type BufferProvider struct {
	buf  []byte // kept alive for the Provider's lifetime; never reallocated
	base uintptr
	used uintptr
}

// NewBufferProvider reserves capacity bytes up front. A capacity of 0
// selects DefaultCapacity.
func NewBufferProvider(capacity uintptr) *BufferProvider {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	buf := make([]byte, capacity)
	return &BufferProvider{buf: buf, base: uintptr(unsafe.Pointer(&buf[0]))}
}

func (p *BufferProvider) Extend(incrementBytes uintptr) (uintptr, error) {
	if incrementBytes == 0 {
		return 0, &Error{Code: ErrorInvalidSize, Message: "increment must be > 0"}
	}
	if p.used+incrementBytes > uintptr(len(p.buf)) {
		return 0, &Error{
			Code: ErrorCapacityExceeded,
			Message: fmt.Sprintf("requested %d bytes, only %d of %d reserved bytes remain",
				incrementBytes, uintptr(len(p.buf))-p.used, len(p.buf)),
		}
	}
	base := p.base + p.used
	p.used += incrementBytes
	return base, nil
}

func (p *BufferProvider) Low() uintptr  { return p.base }
func (p *BufferProvider) High() uintptr { return p.base + p.used }
func (p *BufferProvider) Size() uintptr { return p.used }
