// Package errs defines the categorical error sentinels shared by the
// shamir and sskr packages. Every validation and verification failure in
// this core returns one of these, wrapped with context via
// fmt.Errorf("...: %w"); errors from the random source are passed through
// wrapped, without a sentinel.
package errs

import "errors"

var (
	// IllegalValue covers malformed inputs or cryptographic failure: bad
	// lengths, out-of-range parameters, mismatched member threshold for a
	// reused group index, digest verification failure, invalid mi/mt
	// nibbles.
	IllegalValue = errors.New("sskr: illegal value")

	// IllegalUse covers session contract violations: id/g/gt disagree with
	// the values pinned by an in-progress combine session.
	IllegalUse = errors.New("sskr: illegal use")

	// ResourceExhausted covers dynamic working-buffer allocation failures.
	// No function in this module currently returns it; out-of-range sizes
	// are reported as IllegalValue.
	ResourceExhausted = errors.New("sskr: resource exhausted")
)
