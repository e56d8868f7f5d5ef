// Package mac abstracts the keyed-MAC primitive the SSKR core relies on for
// its integrity digest, so the core never imports a concrete MAC algorithm
// directly.
package mac

import (
	"crypto/hmac"
	"crypto/sha256"
)

// KeyedMAC computes a keyed message authentication code over data.
type KeyedMAC interface {
	Sum(key, data []byte) [32]byte
}

// HMACSHA256 is the reference KeyedMAC collaborator: HMAC-SHA-256 from the
// standard library.
type HMACSHA256 struct{}

// Sum returns HMAC-SHA-256(key, data).
func (HMACSHA256) Sum(key, data []byte) [32]byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
