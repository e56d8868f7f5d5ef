package sskr

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/proxy-sskr/sskr/pkg/errs"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

const referenceSecretHex = "7daa851251002874e1a1995f0897e6b1"

// share #0.1, #0.2, #1.0, #1.2, #1.3 from a reference 2-of-(2-of-3, 3-of-5)
// share set, using known-answer vectors for this scheme.
const (
	share01 = "4bbf1101010c8ba39a7502a325ed07b8d597d1b80f"
	share02 = "4bbf1101025abd490ee65b6084859854ee67736e75"
	share10 = "4bbf11120044ef453f66923d32653b377de5c94b39"
	share12 = "4bbf111202a3763155fcfdb5887abce6ee69c4bbcd"
	share13 = "4bbf11120388626f665fc4c0e545e0c2ff0c26368f"
)

func TestCombineSharesRecoversFromReferenceVector(t *testing.T) {
	secret := mustHex(t, referenceSecretHex)
	all := mustHex(t, share01+share02+share10+share12+share13)

	acc := NewAccumulator(mac.HMACSHA256{})
	got, ok, err := acc.CombineShares(5, all)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, secret, got)
}

func TestCombineSharesAcrossTwoTransactions(t *testing.T) {
	secret := mustHex(t, referenceSecretHex)
	first := mustHex(t, share01+share02)
	second := mustHex(t, share10+share12+share13)

	acc := NewAccumulator(mac.HMACSHA256{})

	_, ok, err := acc.CombineShares(2, first)
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err := acc.CombineShares(3, second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, secret, got)
}

func TestCombineSharesIdempotentOnDuplicates(t *testing.T) {
	secret := mustHex(t, referenceSecretHex)
	first := mustHex(t, share01+share02)
	second := mustHex(t, share10+share12+share13)

	acc := NewAccumulator(mac.HMACSHA256{})

	_, ok, err := acc.CombineShares(2, first)
	require.NoError(t, err)
	require.False(t, ok)

	// re-send the same shares for a group already sealed; must be a no-op.
	_, ok, err = acc.CombineShares(2, first)
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err := acc.CombineShares(3, second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, secret, got)
}

func TestCombineSharesStraddlingGroupsPerCall(t *testing.T) {
	secret := mustHex(t, referenceSecretHex)
	first := mustHex(t, share01+share13)
	second := mustHex(t, share10+share02+share12+share13)

	acc := NewAccumulator(mac.HMACSHA256{})

	_, ok, err := acc.CombineShares(2, first)
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err := acc.CombineShares(4, second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, secret, got)
}

func TestCombineSharesSessionPinningRejectsForeignID(t *testing.T) {
	// second share's id nibble (0x4ccf) differs from the first (0x4bbf).
	foreign := "4ccf1101025abd490ee65b6084859854ee67736e75"
	buf := mustHex(t, share01+foreign)

	acc := NewAccumulator(mac.HMACSHA256{})
	_, _, err := acc.CombineShares(2, buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.IllegalUse))
}

func TestCombineSharesDetectsFlippedPayloadByte(t *testing.T) {
	corrupted := "4bbf1101025abd490ee65b6084859854ee67736e76" // last byte flipped
	buf := mustHex(t, share01+corrupted)

	acc := NewAccumulator(mac.HMACSHA256{})
	_, _, err := acc.CombineShares(2, buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.IllegalValue))
}

func TestResetAllowsAnUnrelatedSessionAfterwards(t *testing.T) {
	secret := mustHex(t, referenceSecretHex)
	first := mustHex(t, share01+share02)
	second := mustHex(t, share10+share12+share13)

	acc := NewAccumulator(mac.HMACSHA256{})

	_, ok, err := acc.CombineShares(2, first)
	require.NoError(t, err)
	require.False(t, ok)

	acc.Reset()

	_, ok, err = acc.CombineShares(3, second)
	require.NoError(t, err)
	require.False(t, ok)

	got, ok, err := acc.CombineShares(2, first)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, secret, got)
}

func TestCombineSharesRejectsBadLength(t *testing.T) {
	acc := NewAccumulator(mac.HMACSHA256{})
	_, _, err := acc.CombineShares(2, make([]byte, 7))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.IllegalValue))
}
