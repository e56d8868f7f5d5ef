package transport

import (
	"testing"

	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/random"
	"github.com/proxy-sskr/sskr/pkg/sskr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEcho(t *testing.T) {
	h := NewHost(&random.Deterministic{}, mac.HMACSHA256{}, nil)
	resp := h.Handle(Request{Opcode: OpEcho, Params: []byte("ping")})
	require.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, []byte("ping"), resp.Data)
}

func TestHandleUnsupportedOpcode(t *testing.T) {
	h := NewHost(&random.Deterministic{}, mac.HMACSHA256{}, nil)
	resp := h.Handle(Request{Opcode: 0xFF})
	assert.Equal(t, StatusUnsupportedOpcode, resp.Status)
}

func TestGenerateThenCombineRoundTrip(t *testing.T) {
	h := NewHost(&random.Deterministic{}, mac.HMACSHA256{}, nil)

	secret := []byte("0123456789abcdef")
	groups := []sskr.Group{{Threshold: 2, Count: 3}}
	params, err := EncodeGenerateSharesParams(1, groups, secret)
	require.NoError(t, err)

	genResp := h.Handle(Request{Opcode: OpGenerateShares, Params: params})
	require.Equal(t, StatusOK, genResp.Status)
	require.NotEmpty(t, genResp.Data)
	require.Zero(t, len(genResp.Data)%3)

	shareLen := len(genResp.Data) / 3
	buf := genResp.Data[:2*shareLen]

	combineResp := h.Handle(Request{Opcode: OpCombineShares, Params: EncodeCombineSharesParams(2, buf)})
	require.Equal(t, StatusOK, combineResp.Status)
	assert.Equal(t, secret, combineResp.Data)
}

func TestHandleGenerateSharesRejectsTruncatedParams(t *testing.T) {
	h := NewHost(&random.Deterministic{}, mac.HMACSHA256{}, nil)
	resp := h.Handle(Request{Opcode: OpGenerateShares, Params: []byte{1, 2, 0, 0}})
	assert.Equal(t, StatusIllegalValue, resp.Status)
}

func TestHandleResetClearsAccumulatorState(t *testing.T) {
	h := NewHost(&random.Deterministic{}, mac.HMACSHA256{}, nil)

	secret := []byte("0123456789abcdef")
	groups := []sskr.Group{{Threshold: 2, Count: 3}}
	params, err := EncodeGenerateSharesParams(1, groups, secret)
	require.NoError(t, err)
	genResp := h.Handle(Request{Opcode: OpGenerateShares, Params: params})
	require.Equal(t, StatusOK, genResp.Status)
	require.Zero(t, len(genResp.Data)%3)

	shareLen := len(genResp.Data) / 3
	oneShare := genResp.Data[:shareLen]

	partial := h.Handle(Request{Opcode: OpCombineShares, Params: EncodeCombineSharesParams(1, oneShare)})
	require.Equal(t, StatusOK, partial.Status)
	require.Empty(t, partial.Data)

	resetResp := h.Handle(Request{Opcode: OpReset})
	require.Equal(t, StatusOK, resetResp.Status)

	// after a reset, the single share on its own is still insufficient,
	// but it must not carry over poisoned state from the prior session.
	again := h.Handle(Request{Opcode: OpCombineShares, Params: EncodeCombineSharesParams(1, oneShare)})
	require.Equal(t, StatusOK, again.Status)
	assert.Empty(t, again.Data)
}
