// Package digest computes the 4-byte integrity tag Shamir.Combine verifies
// against: the leading 4 bytes of HMAC-SHA-256(key, data).
package digest

import "github.com/proxy-sskr/sskr/pkg/mac"

// Size is the length, in bytes, of the integrity digest.
const Size = 4

// Sum4 returns the first Size bytes of mac.Sum(key, data).
func Sum4(m mac.KeyedMAC, key, data []byte) [Size]byte {
	full := m.Sum(key, data)
	var out [Size]byte
	copy(out[:], full[:Size])
	return out
}
