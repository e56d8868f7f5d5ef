// Package random abstracts the cryptographic random byte source the SSKR
// core consumes. All consumption by the core is byte-addressable and of
// known length.
package random

import "crypto/rand"

// Source fills buf with random bytes.
type Source interface {
	Fill(buf []byte) error
}

// CryptoSource is the reference Source backed by crypto/rand.
type CryptoSource struct{}

// Fill fills buf with cryptographically secure random bytes.
func (CryptoSource) Fill(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

// Deterministic reproduces the fixed-step generator used by the original
// implementation's test harness: consecutive bytes starting at 0 and
// incrementing by 17 (mod 256). It exists only so this module's tests can
// reproduce known-answer share vectors byte for byte; it must never be
// used outside tests.
type Deterministic struct {
	next byte
}

// Fill writes the next len(buf) bytes of the 0, 17, 34, ... sequence.
func (d *Deterministic) Fill(buf []byte) error {
	for i := range buf {
		buf[i] = d.next
		d.next += 17
	}
	return nil
}
