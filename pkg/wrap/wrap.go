// Package wrap seals arbitrary-length payloads (files, not just the
// fixed 16-32 byte secrets the core scheme handles directly) behind a
// two-level SSKR policy. It draws a random AES-256 key, compresses and
// seals the payload under that key, and splits the key itself into
// shares - the envelope ciphertext can then be stored or transmitted in
// the open, since it is useless without a threshold of key shares.
package wrap

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/proxy-sskr/sskr/pkg/compression"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/random"
	"github.com/proxy-sskr/sskr/pkg/secrets"
	"github.com/proxy-sskr/sskr/pkg/sskr"
)

// KeySize is the size, in bytes, of the envelope's AES-256-GCM key. It
// sits inside shamir's [MinSecretSize,MaxSecretSize] range, so the key
// itself can be split with the same core scheme as any other secret.
const KeySize = 32

// Envelope is a compressed, authenticated payload. It carries no key
// material; recovering its Ciphertext requires a threshold of the key
// shares returned alongside it by Seal.
type Envelope struct {
	Ciphertext []byte
}

// Seal compresses plaintext, seals it under a freshly drawn key, and
// splits that key under the two-level policy described by groupThreshold
// and groups.
func Seal(plaintext []byte, groupThreshold int, groups []sskr.Group, src random.Source, m mac.KeyedMAC) (*Envelope, []sskr.Share, error) {
	key := secrets.New(KeySize)
	defer key.Wipe()
	if err := src.Fill(key.Bytes()); err != nil {
		return nil, nil, fmt.Errorf("wrap: drawing envelope key: %w", err)
	}

	compressor := compression.NewGzipCompressor()
	compressed, err := compressor.Compress(plaintext)
	if err != nil {
		return nil, nil, fmt.Errorf("wrap: compressing payload: %w", err)
	}

	ciphertext, err := sealAESGCM(compressed, key.Bytes())
	if err != nil {
		return nil, nil, fmt.Errorf("wrap: sealing payload: %w", err)
	}

	shares, err := sskr.GenerateShares(groupThreshold, groups, key.Bytes(), src, m)
	if err != nil {
		return nil, nil, fmt.Errorf("wrap: splitting envelope key: %w", err)
	}

	return &Envelope{Ciphertext: ciphertext}, shares, nil
}

// Open recovers the plaintext behind env, given a key already recovered
// through an Accumulator's CombineShares.
func Open(env *Envelope, key []byte) ([]byte, error) {
	compressed, err := openAESGCM(env.Ciphertext, key)
	if err != nil {
		return nil, fmt.Errorf("wrap: opening payload: %w", err)
	}

	compressor := compression.NewGzipCompressor()
	plaintext, err := compressor.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("wrap: decompressing payload: %w", err)
	}
	return plaintext, nil
}

// sealAESGCM encrypts plaintext under key and returns [nonce|ciphertext|tag].
func sealAESGCM(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("constructing cipher block: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("constructing GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("drawing nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// openAESGCM reverses sealAESGCM.
func openAESGCM(sealed, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("constructing cipher block: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("constructing GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, errors.New("sealed payload shorter than nonce")
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return plaintext, nil
}
