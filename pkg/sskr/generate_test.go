package sskr

import (
	"encoding/hex"
	"testing"

	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/random"
	"github.com/stretchr/testify/require"
)

func secretHex(t *testing.T) []byte {
	t.Helper()
	b, err := hex.DecodeString("7daa851251002874e1a1995f0897e6b1")
	require.NoError(t, err)
	return b
}

func TestGenerateSharesRoundTripSingleGroup(t *testing.T) {
	secret := secretHex(t)
	groups := []Group{{Threshold: 2, Count: 3}}

	shares, err := GenerateShares(1, groups, secret, random.CryptoSource{}, mac.HMACSHA256{})
	require.NoError(t, err)
	require.Len(t, shares, 3)

	recoverAndCheck(t, shares[:2], secret)
}

func TestGenerateSharesRoundTripTwoGroups(t *testing.T) {
	secret := secretHex(t)
	groups := []Group{{Threshold: 2, Count: 3}, {Threshold: 3, Count: 5}}

	shares, err := GenerateShares(2, groups, secret, random.CryptoSource{}, mac.HMACSHA256{})
	require.NoError(t, err)
	require.Len(t, shares, 8)

	var chosen []Share
	group0, group1 := 0, 0
	for _, s := range shares {
		if s.GroupIndex == 0 && group0 < 2 {
			chosen = append(chosen, s)
			group0++
		} else if s.GroupIndex == 1 && group1 < 3 {
			chosen = append(chosen, s)
			group1++
		}
	}
	recoverAndCheck(t, chosen, secret)
}

func TestGenerateSharesRejectsInvalidPolicy(t *testing.T) {
	secret := secretHex(t)

	_, err := GenerateShares(0, []Group{{2, 3}}, secret, random.CryptoSource{}, mac.HMACSHA256{})
	require.Error(t, err)

	_, err = GenerateShares(2, []Group{{2, 3}}, secret, random.CryptoSource{}, mac.HMACSHA256{})
	require.Error(t, err)

	_, err = GenerateShares(1, []Group{{5, 3}}, secret, random.CryptoSource{}, mac.HMACSHA256{})
	require.Error(t, err)
}

func recoverAndCheck(t *testing.T, shares []Share, want []byte) {
	t.Helper()
	buf, err := SerializeAll(shares)
	require.NoError(t, err)

	acc := NewAccumulator(mac.HMACSHA256{})
	got, ok, err := acc.CombineShares(len(shares), buf)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)
}
