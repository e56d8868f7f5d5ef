// Package fec adds Reed-Solomon forward error correction around a
// serialized share (or batch of shares) so it survives transmission over
// a lossy channel: a card reader with a flaky contactless link, a QR code
// scanned under poor lighting, anything that can drop or mangle whole
// shards without fully destroying the transfer.
package fec

import (
	"bytes"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Codec erasure-codes a byte payload into dataShards+parityShards shards,
// any dataShards of which (regardless of which ones are lost) are enough
// to reconstruct the original payload.
type Codec struct {
	dataShards   int
	parityShards int
}

// NewCodec constructs a Codec. parityShards is the number of shards that
// may be lost and still allow reconstruction.
func NewCodec(dataShards, parityShards int) (*Codec, error) {
	if dataShards < 1 || parityShards < 0 {
		return nil, fmt.Errorf("fec: invalid shard counts %d/%d", dataShards, parityShards)
	}
	return &Codec{dataShards: dataShards, parityShards: parityShards}, nil
}

// Encode splits payload into c.dataShards data shards (padding the last
// one as needed) plus c.parityShards parity shards, in shard-index order.
func (c *Codec) Encode(payload []byte) ([][]byte, error) {
	enc, err := reedsolomon.New(c.dataShards, c.parityShards)
	if err != nil {
		return nil, fmt.Errorf("fec: constructing encoder: %w", err)
	}

	shards, err := enc.Split(payload)
	if err != nil {
		return nil, fmt.Errorf("fec: splitting payload: %w", err)
	}
	if err := enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("fec: encoding parity: %w", err)
	}
	return shards, nil
}

// Decode reconstructs the original payload from whatever shards survived,
// keyed by shard index. available must contain at least c.dataShards
// entries. payloadSize trims the padding Encode added to the final data
// shard.
func (c *Codec) Decode(available map[int][]byte, payloadSize int) ([]byte, error) {
	total := c.dataShards + c.parityShards
	shards := make([][]byte, total)
	have := 0
	for i := 0; i < total; i++ {
		if data, ok := available[i]; ok {
			shards[i] = data
			have++
		}
	}
	if have < c.dataShards {
		return nil, fmt.Errorf("fec: have %d shards, need %d", have, c.dataShards)
	}

	enc, err := reedsolomon.New(c.dataShards, c.parityShards)
	if err != nil {
		return nil, fmt.Errorf("fec: constructing decoder: %w", err)
	}
	if err := enc.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("fec: reconstructing: %w", err)
	}

	var buf bytes.Buffer
	for i := 0; i < c.dataShards; i++ {
		if len(shards[i]) == 0 {
			return nil, fmt.Errorf("fec: unexpected empty data shard %d", i)
		}
		buf.Write(shards[i])
	}

	joined := buf.Bytes()
	if payloadSize < 0 || payloadSize > len(joined) {
		return nil, fmt.Errorf("fec: payload size %d out of range for %d reconstructed bytes", payloadSize, len(joined))
	}
	return joined[:payloadSize], nil
}
