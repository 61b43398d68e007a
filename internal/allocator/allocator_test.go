package allocator

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/orizon-lang/firstfit/internal/region"
)

func newTestAllocator(t *testing.T, opts ...Option) *Allocator {
	t.Helper()
	a, err := New(region.NewBufferProvider(1<<20), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

// TestAllocator exercises the public Alloc/Free/Realloc surface.
func TestAllocator(t *testing.T) {
	t.Run("BasicAllocation", func(t *testing.T) {
		a := newTestAllocator(t)

		ptr := a.Alloc(1024)
		if ptr == nil {
			t.Fatal("allocation failed")
		}

		data := (*[1024]byte)(ptr)
		for i := range data {
			data[i] = byte(i % 256)
		}
		for i := range data {
			if data[i] != byte(i%256) {
				t.Fatalf("data corruption at index %d", i)
			}
		}

		a.Free(ptr)
	})

	t.Run("ZeroAllocation", func(t *testing.T) {
		a := newTestAllocator(t)
		if ptr := a.Alloc(0); ptr != nil {
			t.Error("zero-size allocation should return nil")
		}
	})

	t.Run("FreeNil", func(t *testing.T) {
		a := newTestAllocator(t)
		a.Free(nil) // must not panic
	})

	t.Run("ManySmallAllocationsThenFree", func(t *testing.T) {
		a := newTestAllocator(t)

		var ptrs []unsafe.Pointer
		for i := 0; i < 256; i++ {
			ptr := a.Alloc(16)
			if ptr == nil {
				t.Fatalf("allocation %d failed", i)
			}
			ptrs = append(ptrs, ptr)
		}

		for _, ptr := range ptrs {
			a.Free(ptr)
		}

		if err := a.Check(nil); err != nil {
			t.Fatalf("Check after freeing everything: %v", err)
		}
		stats := a.Stats()
		if stats.BytesInUse != 0 {
			t.Fatalf("BytesInUse = %d, want 0 after freeing every block", stats.BytesInUse)
		}
	})

	t.Run("CoalescesAdjacentFreedBlocks", func(t *testing.T) {
		a := newTestAllocator(t)

		p1 := a.Alloc(64)
		p2 := a.Alloc(64)
		p3 := a.Alloc(64)

		a.Free(p1)
		a.Free(p3)
		a.Free(p2) // merges all three into one run

		statsBefore := a.Stats()

		big := a.Alloc(64*3 + 32)
		if big == nil {
			t.Fatal("expected the coalesced run to satisfy a larger request")
		}
		_ = statsBefore
	})

	t.Run("Reallocation", func(t *testing.T) {
		a := newTestAllocator(t)

		ptr := a.Alloc(64)
		data := (*[64]byte)(ptr)
		for i := range data {
			data[i] = byte(i)
		}

		grown := a.Realloc(ptr, 256)
		if grown == nil {
			t.Fatal("realloc-grow failed")
		}
		grownData := (*[64]byte)(grown)
		for i := range grownData {
			if grownData[i] != byte(i) {
				t.Fatalf("payload not preserved across growing realloc at %d", i)
			}
		}

		shrunk := a.Realloc(grown, 8)
		if shrunk == nil {
			t.Fatal("realloc-shrink failed")
		}
		shrunkData := (*[8]byte)(shrunk)
		for i := range shrunkData {
			if shrunkData[i] != byte(i) {
				t.Fatalf("payload not preserved across shrinking realloc at %d", i)
			}
		}
	})

	t.Run("ReallocNilActsLikeAlloc", func(t *testing.T) {
		a := newTestAllocator(t)
		ptr := a.Realloc(nil, 32)
		if ptr == nil {
			t.Fatal("Realloc(nil, n) should behave like Alloc(n)")
		}
	})

	t.Run("ReallocZeroActsLikeFree", func(t *testing.T) {
		a := newTestAllocator(t)
		ptr := a.Alloc(32)
		if got := a.Realloc(ptr, 0); got != nil {
			t.Fatal("Realloc(ptr, 0) should return nil")
		}
	})

	t.Run("GrowsHeapWhenFreeListExhausted", func(t *testing.T) {
		a := newTestAllocator(t, WithChunkSize(256))

		var ptrs []unsafe.Pointer
		for i := 0; i < 1000; i++ {
			ptr := a.Alloc(64)
			if ptr == nil {
				t.Fatalf("allocation %d failed", i)
			}
			ptrs = append(ptrs, ptr)
		}

		stats := a.Stats()
		if stats.ExtendCount < 2 {
			t.Fatalf("ExtendCount = %d, expected multiple heap extensions", stats.ExtendCount)
		}
	})

	t.Run("RepeatPatternEscapesListWalk", func(t *testing.T) {
		a := newTestAllocator(t, WithRepeatThreshold(4))

		// Allocate and free a run of one size (the adjacent frees coalesce),
		// then keep requesting a different size repeatedly: after the
		// threshold, find_fit must stop walking the free list and extend
		// instead.
		var churn []unsafe.Pointer
		for i := 0; i < 64; i++ {
			churn = append(churn, a.Alloc(32))
		}
		for _, p := range churn {
			a.Free(p)
		}

		before := a.Stats().ExtendCount
		for i := 0; i < 10; i++ {
			if ptr := a.Alloc(512); ptr == nil {
				t.Fatalf("allocation %d failed", i)
			}
		}
		after := a.Stats().ExtendCount
		if after <= before {
			t.Fatal("expected the repeat-pattern escape hatch to trigger at least one extension")
		}
	})

	t.Run("CheckDetectsNothingOnAHealthyHeap", func(t *testing.T) {
		a := newTestAllocator(t)
		for i := 0; i < 50; i++ {
			a.Alloc(uintptr(8 + i%40))
		}
		var buf bytes.Buffer
		if err := a.Check(&buf); err != nil {
			t.Fatalf("Check on a healthy heap: %v", err)
		}
		if buf.Len() == 0 {
			t.Fatal("Check should have written at least one block line")
		}
	})

	t.Run("OutOfMemoryReturnsNilAndRecordsLastError", func(t *testing.T) {
		a, err := New(region.NewBufferProvider(256))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i := 0; i < 1000; i++ {
			if a.Alloc(64) == nil {
				break
			}
		}
		if a.LastError() == nil {
			t.Fatal("expected LastError to be set once the reserved region is exhausted")
		}
	})
}

func TestAdjustedSize(t *testing.T) {
	cases := []struct {
		size uintptr
		want uintptr
	}{
		{0, minBlockSize},
		{1, minBlockSize},
		{doubleWordSize, minBlockSize},
		{doubleWordSize + 1, minBlockSize + doubleWordSize},
		{1024, alignUp(1024+doubleWordSize, doubleWordSize)},
	}
	for _, c := range cases {
		if got := adjustedSize(c.size); got != c.want {
			t.Errorf("adjustedSize(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}
