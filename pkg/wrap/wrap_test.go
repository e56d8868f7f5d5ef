package wrap

import (
	"testing"

	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/random"
	"github.com/proxy-sskr/sskr/pkg/sskr"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	plaintext := []byte("the file contents we actually care about protecting")
	groups := []sskr.Group{{Threshold: 2, Count: 3}}

	env, shares, err := Seal(plaintext, 1, groups, random.CryptoSource{}, mac.HMACSHA256{})
	require.NoError(t, err)
	require.Len(t, shares, 3)

	buf, err := sskr.SerializeAll(shares[:2])
	require.NoError(t, err)

	acc := sskr.NewAccumulator(mac.HMACSHA256{})
	key, ok, err := acc.CombineShares(2, buf)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := Open(env, key)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestOpenFailsWithWrongKey(t *testing.T) {
	plaintext := []byte("sensitive contents")
	groups := []sskr.Group{{Threshold: 2, Count: 2}}

	env, _, err := Seal(plaintext, 1, groups, random.CryptoSource{}, mac.HMACSHA256{})
	require.NoError(t, err)

	_, err = Open(env, make([]byte, KeySize))
	require.Error(t, err)
}
