package sskr

import (
	"encoding/binary"
	"fmt"

	"github.com/proxy-sskr/sskr/pkg/errs"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/random"
	"github.com/proxy-sskr/sskr/pkg/shamir"
)

// Group describes one group's member policy: Threshold members out of
// Count are needed to recover that group's share.
type Group struct {
	Threshold int
	Count     int
}

// GenerateShares splits secret under a two-level policy: groupThreshold
// groups (out of len(groups)) are needed, and within group i, the
// corresponding groups[i].Threshold members (out of groups[i].Count) are
// needed. It is stateless with respect to any Accumulator: its errors
// never disturb an in-progress CombineShares session.
func GenerateShares(groupThreshold int, groups []Group, secret []byte, src random.Source, m mac.KeyedMAC) ([]Share, error) {
	g := len(groups)
	if groupThreshold < 1 || groupThreshold > g || g > MaxShareCount {
		return nil, fmt.Errorf("sskr: group threshold %d of %d groups: %w", groupThreshold, g, errs.IllegalValue)
	}
	for i, grp := range groups {
		if grp.Threshold < 1 || grp.Threshold > grp.Count || grp.Count > MaxShareCount {
			return nil, fmt.Errorf("sskr: group %d policy %d-of-%d: %w", i, grp.Threshold, grp.Count, errs.IllegalValue)
		}
	}

	var idBuf [2]byte
	if err := src.Fill(idBuf[:]); err != nil {
		return nil, fmt.Errorf("sskr: drawing share-set id: %w", err)
	}
	id := binary.BigEndian.Uint16(idBuf[:])

	groupSecrets, err := shamir.Split(groupThreshold, g, secret, src, m)
	if err != nil {
		return nil, fmt.Errorf("sskr: splitting into groups: %w", err)
	}

	var out []Share
	for i, grp := range groups {
		memberShares, err := shamir.Split(grp.Threshold, grp.Count, groupSecrets[i], src, m)
		if err != nil {
			return nil, fmt.Errorf("sskr: splitting group %d: %w", i, err)
		}
		for j, payload := range memberShares {
			out = append(out, Share{
				ID:              id,
				GroupCount:      byte(g),
				GroupThreshold:  byte(groupThreshold),
				GroupIndex:      byte(i),
				MemberThreshold: byte(grp.Threshold),
				MemberIndex:     byte(j),
				Payload:         payload,
			})
		}
	}
	return out, nil
}

// SerializeAll encodes every share in order and concatenates them, the
// on-wire form emitted by the GENERATE_SHARES opcode.
func SerializeAll(shares []Share) ([]byte, error) {
	var out []byte
	for i, s := range shares {
		buf, err := s.Serialize()
		if err != nil {
			return nil, fmt.Errorf("sskr: serializing share %d: %w", i, err)
		}
		out = append(out, buf...)
	}
	return out, nil
}
