package gf256

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddIsXor(t *testing.T) {
	assert.Equal(t, byte(122), Add(100, 30))
}

func TestSubIsXor(t *testing.T) {
	assert.Equal(t, byte(122), Sub(100, 30))
}

func TestMulKnownAnswers(t *testing.T) {
	assert.Equal(t, byte(254), Mul(90, 21))
	assert.Equal(t, byte(167), Mul(133, 5))
	assert.Equal(t, byte(0), Mul(0, 21))
	assert.Equal(t, byte(0x36), Mul(0xb6, 0x53))
}

func TestDivKnownAnswers(t *testing.T) {
	assert.Equal(t, byte(189), Div(90, 21))
	assert.Equal(t, byte(151), Div(6, 55))
	assert.Equal(t, byte(138), Div(22, 192))
	assert.Equal(t, byte(0), Div(0, 192))
}

func TestAddCommutative(t *testing.T) {
	for i := 0; i < 256; i++ {
		for j := 0; j < 256; j++ {
			require.Equal(t, Add(byte(i), byte(j)), Add(byte(j), byte(i)))
		}
	}
}

func TestMulCommutative(t *testing.T) {
	for i := 0; i < 256; i++ {
		for j := 0; j < 256; j++ {
			require.Equal(t, Mul(byte(i), byte(j)), Mul(byte(j), byte(i)))
		}
	}
}

func TestSubInverseOfAdd(t *testing.T) {
	for i := 0; i < 256; i++ {
		for j := 0; j < 256; j++ {
			require.Equal(t, byte(i), Sub(Add(byte(i), byte(j)), byte(j)))
		}
	}
}

func TestDivInverseOfMul(t *testing.T) {
	for i := 0; i < 256; i++ {
		for j := 1; j < 256; j++ {
			require.Equal(t, byte(i), Div(Mul(byte(i), byte(j)), byte(j)))
			require.Equal(t, byte(i), Mul(Div(byte(i), byte(j)), byte(j)))
		}
	}
}

func TestInterpolateKnownVectors(t *testing.T) {
	assert.Equal(t, byte(0), Interpolate(0, []byte{1, 1, 2, 2, 3, 3}))
	assert.Equal(t, byte(30), Interpolate(0, []byte{1, 80, 2, 90, 3, 20}))
	assert.Equal(t, byte(107), Interpolate(0, []byte{1, 43, 2, 22, 3, 86}))
}

func TestInterpolateReproducesLinearPolynomial(t *testing.T) {
	// f(x) = 7x + 11 (GF(2^8) ops), sampled at x=1,2 and evaluated everywhere.
	f := func(x byte) byte { return Add(Mul(7, x), 11) }
	points := []byte{1, f(1), 2, f(2)}
	for x := 0; x < 256; x++ {
		require.Equal(t, f(byte(x)), Interpolate(byte(x), points))
	}
}
