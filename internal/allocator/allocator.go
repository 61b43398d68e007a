// Package allocator implements a boundary-tagged, explicit-free-list
// dynamic memory allocator over a region.Provider: first-fit search with a
// repeat-pattern escape hatch, immediate coalescing, and an in-place
// realloc policy.
//
// Block pointers are dereferenced through unsafe.Pointer conversions of
// the uintptr addresses region.Provider hands out. That conversion is
// confined to this package's layout helpers and the ptrAt/addrOf pair
// below; callers only ever see opaque unsafe.Pointer values.
package allocator

import (
	"fmt"
	"io"
	"unsafe"

	apperrors "github.com/orizon-lang/firstfit/internal/errors"
	"github.com/orizon-lang/firstfit/internal/region"
)

// Config holds the tunables that shape an Allocator's heap-growth and
// search behavior. Build one with Option functions, not by constructing
// Config directly, so new fields can default sanely as they're added.
type Config struct {
	// ChunkSize is the minimum number of bytes requested from the region
	// provider whenever find_fit fails and the heap has to grow.
	ChunkSize uintptr
	// RepeatThreshold is how many times in a row a request may repeat the
	// previous request's size before find_fit stops walking the free list
	// and extends the heap directly.
	RepeatThreshold int
}

// Option configures an Allocator at construction time.
type Option func(*Config)

// WithChunkSize overrides the default heap-growth increment.
func WithChunkSize(n uintptr) Option {
	return func(c *Config) { c.ChunkSize = n }
}

// WithRepeatThreshold overrides the default repeat-pattern escape
// threshold.
func WithRepeatThreshold(n int) Option {
	return func(c *Config) { c.RepeatThreshold = n }
}

func defaultConfig() *Config {
	return &Config{
		ChunkSize:       4096,
		RepeatThreshold: 30,
	}
}

// Stats is a point-in-time snapshot of heap occupancy and activity
// counters. BytesInUse and FreeBlocks are derived by walking the heap at
// call time rather than tracked on the hot path; AllocCount, FreeCount and
// ExtendCount are simple running totals.
type Stats struct {
	AllocCount  uint64
	FreeCount   uint64
	ExtendCount uint64
	BytesInUse  uintptr
	FreeBlocks  int
}

// Allocator is a single-region, single-threaded dynamic storage allocator.
// It is not safe for concurrent use; callers that need concurrent access
// must serialize it themselves (see cmd/heaptrace for one way to do that
// across independent heaps).
type Allocator struct {
	provider region.Provider
	cfg      *Config

	freeHead   addr
	prologue   addr
	firstBlock addr
	epilogue   addr

	lastSize    uintptr
	repeatCount int

	lastErr error
	stats   Stats
}

// New creates an Allocator backed by provider, reserving the prologue,
// epilogue, and an initial free block of minBlockSize bytes. provider must be freshly
// constructed: New assumes it owns the entire region from its first byte.
func New(provider region.Provider, opts ...Option) (*Allocator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	a := &Allocator{provider: provider, cfg: cfg}

	base, err := provider.Extend(4 * wordSize)
	if err != nil {
		return nil, apperrors.OutOfMemory(fmt.Sprintf("initial heap reservation: %v", err))
	}

	// word0: alignment padding, word1: prologue header, word2: prologue
	// footer (== prologue bp, since the prologue has no payload), word3:
	// epilogue header.
	setWordAt(base, 0)
	a.prologue = base + 2*wordSize
	writeBoundaryTags(a.prologue, doubleWordSize, true)
	a.epilogue = base + 3*wordSize
	setWordAt(a.epilogue, pack(0, true))

	a.freeHead = a.prologue

	first := a.extendHeap(minBlockSize)
	if first == nullAddr {
		err := a.lastErr
		if err == nil {
			err = apperrors.OutOfMemory("initial heap extension")
		}
		return nil, err
	}
	a.firstBlock = first

	return a, nil
}

// Alloc reserves at least size bytes and returns a pointer to the start of
// the payload, or nil if size is 0 or the region provider refuses to
// grow. The returned pointer is only valid for the lifetime of this
// Allocator and must eventually be passed to Free or Realloc, not to any
// other allocator.
func (a *Allocator) Alloc(size uintptr) unsafe.Pointer { return a.alloc(size) }

func (a *Allocator) alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	asize := adjustedSize(size)

	bp := a.findFit(asize)
	if bp == nullAddr {
		bp = a.extendHeap(max(asize, a.cfg.ChunkSize))
		if bp == nullAddr {
			return nil
		}
	}

	a.place(bp, asize)
	a.stats.AllocCount++
	return a.ptrAt(bp)
}

// Free releases a block previously returned by Alloc or Realloc on this
// Allocator. Freeing nil is a no-op.
func (a *Allocator) Free(ptr unsafe.Pointer) { a.free(ptr) }

func (a *Allocator) free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	bp := a.addrOf(ptr)
	size := blockSize(bp)
	writeBoundaryTags(bp, size, false)
	a.coalesce(bp)
	a.stats.FreeCount++
}

// Realloc resizes the block at ptr to size bytes, preserving its payload
// up to min(old payload, size) bytes. A nil ptr behaves like Alloc; a
// size of 0 behaves like Free and returns nil.
func (a *Allocator) Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer {
	return a.realloc(ptr, size)
}

// Check walks the heap and free list looking for boundary-tag and
// free-list invariant violations, writing one line per block to w (which
// may be nil to skip the trace) and returning the first inconsistency
// found, if any.
func (a *Allocator) Check(w io.Writer) error { return a.check(w) }

// Stats returns a point-in-time snapshot of allocator activity and
// occupancy.
func (a *Allocator) Stats() Stats {
	s := a.stats

	var used uintptr
	free := 0
	for bp := a.firstBlock; ; {
		h := wordAt(hdr(bp))
		sz := sizeOf(h)
		if sz == 0 {
			break
		}
		if allocOf(h) {
			used += sz
		} else {
			free++
		}
		bp = nextBlock(bp)
	}

	s.BytesInUse = used
	s.FreeBlocks = free
	return s
}

// LastError returns the error from the most recent region-provider
// failure, or nil if none has occurred.
func (a *Allocator) LastError() error { return a.lastErr }

func (a *Allocator) ptrAt(bp addr) unsafe.Pointer   { return unsafe.Pointer(bp) }
func (a *Allocator) addrOf(ptr unsafe.Pointer) addr { return addr(ptr) }
