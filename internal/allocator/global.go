package allocator

import (
	"sync"
	"unsafe"

	"github.com/orizon-lang/firstfit/internal/region"
)

var (
	globalMu   sync.Mutex
	globalOnce *Allocator
)

// Init installs the process-wide default Allocator, backed by provider.
// It must be called once before the package-level Alloc, Free, Realloc or
// GetStats are used; calling it again replaces the previous default.
func Init(provider region.Provider, opts ...Option) error {
	a, err := New(provider, opts...)
	if err != nil {
		return err
	}
	globalMu.Lock()
	globalOnce = a
	globalMu.Unlock()
	return nil
}

// Default returns the process-wide default Allocator installed by Init,
// or nil if Init has not been called.
func Default() *Allocator {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalOnce
}

// Alloc allocates from the default Allocator. It panics if Init has not
// been called, the same way using a nil map panics: the caller forgot a
// setup step, not a recoverable runtime condition.
func Alloc(size uintptr) unsafe.Pointer { return Default().Alloc(size) }

// Free releases ptr back to the default Allocator.
func Free(ptr unsafe.Pointer) { Default().Free(ptr) }

// Realloc resizes ptr on the default Allocator.
func Realloc(ptr unsafe.Pointer, size uintptr) unsafe.Pointer { return Default().Realloc(ptr, size) }

// GetStats reports a snapshot from the default Allocator.
func GetStats() Stats { return Default().Stats() }
