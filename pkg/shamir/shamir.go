// Package shamir implements single-level T-of-N secret sharing over
// GF(2^8) using the SLIP-39 convention: the secret lives at x=255, a
// 4-byte integrity digest at x=254, and share j lives at x=j. This is a
// generalization of a single-byte-secret Shamir split to SLIP-39's
// reserved-x-coordinate, digest-bearing, multi-byte scheme.
package shamir

import (
	"crypto/subtle"
	"fmt"

	"github.com/proxy-sskr/sskr/pkg/digest"
	"github.com/proxy-sskr/sskr/pkg/errs"
	"github.com/proxy-sskr/sskr/pkg/gf256"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/random"
	"github.com/proxy-sskr/sskr/pkg/secrets"
)

const (
	// MinSecretSize is the smallest secret length this scheme supports.
	MinSecretSize = 16
	// MaxSecretSize is the largest secret length this scheme supports.
	MaxSecretSize = 32
	// MaxShareCount is the largest threshold or share count this scheme
	// supports.
	MaxShareCount = 16

	secretX = 0xFF
	digestX = 0xFE
)

func validLength(l int) bool {
	return l >= MinSecretSize && l <= MaxSecretSize && l%2 == 0
}

// Split divides secret into n shares of which any t can recover it, using
// the SLIP-39 point convention. Shares are returned in x-coordinate order:
// share j has x-coordinate j, for j in [0, n).
func Split(t, n int, secret []byte, src random.Source, m mac.KeyedMAC) ([][]byte, error) {
	l := len(secret)
	if !validLength(l) {
		return nil, fmt.Errorf("shamir: secret length %d: %w", l, errs.IllegalValue)
	}
	if t < 1 || t > n || n > MaxShareCount {
		return nil, fmt.Errorf("shamir: threshold %d of %d shares: %w", t, n, errs.IllegalValue)
	}

	shares := make([][]byte, n)
	for j := range shares {
		shares[j] = make([]byte, l)
	}

	if t == 1 {
		for j := 0; j < n; j++ {
			copy(shares[j], secret)
		}
		return shares, nil
	}

	digestKey := secrets.New(l - digest.Size)
	defer digestKey.Wipe()
	if err := src.Fill(digestKey.Bytes()); err != nil {
		return nil, fmt.Errorf("shamir: drawing digest key: %w", err)
	}

	d := digest.Sum4(m, digestKey.Bytes(), secret)
	digestL := secrets.New(l)
	defer digestL.Wipe()
	copy(digestL.Bytes()[:digest.Size], d[:])
	copy(digestL.Bytes()[digest.Size:], digestKey.Bytes())

	// shares at x = 0 .. t-3 are drawn at random and used as-is; they also
	// serve as sample points for interpolating shares at x = t-2 .. n-1.
	innerCount := t - 2
	for j := 0; j < innerCount; j++ {
		if err := src.Fill(shares[j]); err != nil {
			return nil, fmt.Errorf("shamir: drawing inner share %d: %w", j, err)
		}
	}

	points := secrets.New(t * 2)
	defer points.Wipe()
	pb := points.Bytes()

	for i := 0; i < l; i++ {
		k := 0
		for j := 0; j < innerCount; j++ {
			pb[k] = byte(j)
			pb[k+1] = shares[j][i]
			k += 2
		}
		pb[k] = digestX
		pb[k+1] = digestL.Bytes()[i]
		k += 2
		pb[k] = secretX
		pb[k+1] = secret[i]

		for j := innerCount; j < n; j++ {
			shares[j][i] = gf256.Interpolate(byte(j), pb)
		}
	}

	return shares, nil
}

// Combine reconstructs a secret from t shares at the given x-coordinates.
// It returns (secret, true, nil) on success, (nil, false, nil) if the
// shares are well-formed but fail the integrity digest check (not an
// error - the caller decides how to react), and a non-nil error if the
// inputs themselves are malformed.
func Combine(t int, x []byte, shares []byte, m mac.KeyedMAC) ([]byte, bool, error) {
	if t < 1 || t > MaxShareCount {
		return nil, false, fmt.Errorf("shamir: threshold %d: %w", t, errs.IllegalValue)
	}
	if len(shares) == 0 || len(shares)%t != 0 {
		return nil, false, fmt.Errorf("shamir: shares length %d not a multiple of t=%d: %w", len(shares), t, errs.IllegalValue)
	}
	if len(x) != t {
		return nil, false, fmt.Errorf("shamir: got %d x-coordinates for t=%d: %w", len(x), t, errs.IllegalValue)
	}

	l := len(shares) / t
	if !validLength(l) {
		return nil, false, fmt.Errorf("shamir: secret length %d: %w", l, errs.IllegalValue)
	}

	secret := make([]byte, l)
	if t == 1 {
		copy(secret, shares[:l])
		return secret, true, nil
	}

	digestL := secrets.New(l)
	defer digestL.Wipe()

	points := secrets.New(t * 2)
	defer points.Wipe()
	pb := points.Bytes()

	for i := 0; i < l; i++ {
		k := 0
		for j := 0; j < t; j++ {
			pb[k] = x[j]
			pb[k+1] = shares[j*l+i]
			k += 2
		}
		secret[i] = gf256.Interpolate(secretX, pb)
		digestL.Bytes()[i] = gf256.Interpolate(digestX, pb)
	}

	got := digest.Sum4(m, digestL.Bytes()[digest.Size:], secret)
	if subtle.ConstantTimeCompare(got[:], digestL.Bytes()[:digest.Size]) != 1 {
		for i := range secret {
			secret[i] = 0
		}
		return nil, false, nil
	}

	return secret, true, nil
}
