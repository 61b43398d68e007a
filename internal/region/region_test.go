package region

import (
	"testing"
	"unsafe"
)

func TestBufferProvider(t *testing.T) {
	t.Run("ExtendAdvancesHighWaterMark", func(t *testing.T) {
		p := NewBufferProvider(128)

		base, err := p.Extend(16)
		if err != nil {
			t.Fatalf("Extend: %v", err)
		}
		if base != p.Low() {
			t.Fatalf("first Extend base = %#x, want Low() = %#x", base, p.Low())
		}
		if p.Size() != 16 {
			t.Fatalf("Size() = %d, want 16", p.Size())
		}

		base2, err := p.Extend(16)
		if err != nil {
			t.Fatalf("Extend: %v", err)
		}
		if base2 != base+16 {
			t.Fatalf("second Extend base = %#x, want %#x", base2, base+16)
		}
		if p.Size() != 32 {
			t.Fatalf("Size() = %d, want 32", p.Size())
		}
	})

	t.Run("AddressesStayValidAndWritable", func(t *testing.T) {
		p := NewBufferProvider(64)

		base1, err := p.Extend(8)
		if err != nil {
			t.Fatalf("Extend: %v", err)
		}
		*(*byte)(unsafe.Pointer(base1)) = 0xAB

		if _, err := p.Extend(8); err != nil {
			t.Fatalf("Extend: %v", err)
		}

		if got := *(*byte)(unsafe.Pointer(base1)); got != 0xAB {
			t.Fatalf("byte at first-returned address changed after a later Extend: got %#x", got)
		}
	})

	t.Run("CapacityExceeded", func(t *testing.T) {
		p := NewBufferProvider(16)
		if _, err := p.Extend(16); err != nil {
			t.Fatalf("Extend: %v", err)
		}
		if _, err := p.Extend(1); err == nil {
			t.Fatal("expected error when exceeding reserved capacity")
		} else if regErr, ok := err.(*Error); !ok || regErr.Code != ErrorCapacityExceeded {
			t.Fatalf("err = %v, want ErrorCapacityExceeded", err)
		}
	})

	t.Run("ZeroIncrementRejected", func(t *testing.T) {
		p := NewBufferProvider(16)
		if _, err := p.Extend(0); err == nil {
			t.Fatal("expected error for zero-size increment")
		}
	})

	t.Run("DefaultCapacityUsedWhenZero", func(t *testing.T) {
		p := NewBufferProvider(0)
		if _, err := p.Extend(1); err != nil {
			t.Fatalf("Extend: %v", err)
		}
	})
}

func TestSystemProvider(t *testing.T) {
	p, err := NewSystemProvider(4096)
	if err != nil {
		t.Fatalf("NewSystemProvider: %v", err)
	}
	defer p.Close()

	base, err := p.Extend(64)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if base != p.Low() {
		t.Fatalf("base = %#x, want Low() = %#x", base, p.Low())
	}
	if p.Size() != 64 {
		t.Fatalf("Size() = %d, want 64", p.Size())
	}

	*(*byte)(unsafe.Pointer(base)) = 0xAB
	if got := *(*byte)(unsafe.Pointer(base)); got != 0xAB {
		t.Fatal("write through returned address did not persist")
	}
}

var _ Provider = (*BufferProvider)(nil)
var _ Provider = (*SystemProvider)(nil)
