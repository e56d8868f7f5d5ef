package stego

import (
	"bytes"
	"errors" // Import required for errors.Is
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/proxy-sskr/sskr/pkg/sskr"
)

func TestEmbedAndExtract(t *testing.T) {
	// 1. Create a dummy carrier image (10x10 pixels)
	// Capacity: 10x10 = 100 pixels * 3 channels = 300 bits total.
	// Header Overhead: 32 bits.
	// Available for Data: 268 bits / 8 = 33 bytes max.
	carrier := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	
	// Fill with a uniform color to ensure we aren't relying on zero-values
	draw.Draw(carrier, carrier.Bounds(), &image.Uniform{color.NRGBA{R: 100, G: 100, B: 100, A: 255}}, image.Point{}, draw.Src)

	// 2. Define secret data
	secret := []byte("Hello World!") // 12 bytes

	// 3. Embed
	stegoImg, err := Embed(carrier, secret)
	if err != nil {
		t.Fatalf("Failed to embed data: %v", err)
	}

	// 4. Extract
	extracted, err := Extract(stegoImg)
	if err != nil {
		t.Fatalf("Failed to extract data: %v", err)
	}

	// 5. Compare
	if !bytes.Equal(secret, extracted) {
		t.Errorf("Extracted data mismatch.\nExpected: %v\nGot: %v", secret, extracted)
	}
}

func TestCapacityCheck(t *testing.T) {
	// 2x2 image = 4 pixels * 3 channels = 12 bits total.
	// This is not even enough for the 32-bit length header.
	carrier := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	data := []byte("A")

	_, err := Embed(carrier, data)
	
	// Fix: Use errors.Is because the error is wrapped with context
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("Expected error wrapping ErrMessageTooLarge, got %v", err)
	}
}

func TestEmbedAndExtractShare(t *testing.T) {
	carrier := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	draw.Draw(carrier, carrier.Bounds(), &image.Uniform{color.NRGBA{R: 60, G: 60, B: 60, A: 255}}, image.Point{}, draw.Src)

	share := sskr.Share{
		ID:              0x4bbf,
		GroupCount:      2,
		GroupThreshold:  1,
		GroupIndex:      1,
		MemberThreshold: 2,
		MemberIndex:     1,
		Payload:         bytes.Repeat([]byte{0xab}, 16),
	}

	stegoImg, err := EmbedShare(carrier, share)
	if err != nil {
		t.Fatalf("failed to embed share: %v", err)
	}

	got, err := ExtractShare(stegoImg)
	if err != nil {
		t.Fatalf("failed to extract share: %v", err)
	}
	if got.ID != share.ID || got.GroupIndex != share.GroupIndex || got.MemberIndex != share.MemberIndex {
		t.Errorf("extracted share metadata mismatch: got %+v want %+v", got, share)
	}
	if !bytes.Equal(got.Payload, share.Payload) {
		t.Errorf("extracted payload mismatch: got %x want %x", got.Payload, share.Payload)
	}
}