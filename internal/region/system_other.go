//go:build !unix && !windows

package region

// SystemProvider falls back to the pure-Go BufferProvider on platforms
// without a native mmap/VirtualAlloc binding in golang.org/x/sys.
type SystemProvider struct {
	*BufferProvider
}

func NewSystemProvider(capacity uintptr) (*SystemProvider, error) {
	return &SystemProvider{BufferProvider: NewBufferProvider(capacity)}, nil
}

func (p *SystemProvider) Close() error { return nil }
