// Package secrets provides a small wrapper around sensitive byte buffers so
// that every exit path through the SSKR core - success, error, or reset -
// can reliably wipe them.
package secrets

// Buffer wraps a byte slice holding sensitive data and zeroes it on Wipe.
type Buffer struct {
	data []byte
}

// New allocates a zeroed Buffer of the given size.
func New(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// Wrap adopts an existing slice as a Buffer. The caller must not retain
// other references to data if they want Wipe to be effective.
func Wrap(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns the underlying slice. Callers must not retain it past Wipe.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Wipe overwrites the buffer with zeros. Idempotent and nil-safe.
func (b *Buffer) Wipe() {
	if b == nil || b.data == nil {
		return
	}
	for i := range b.data {
		b.data[i] = 0
	}
	b.data = nil
}
