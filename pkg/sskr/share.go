package sskr

import (
	"encoding/binary"
	"fmt"

	"github.com/proxy-sskr/sskr/pkg/errs"
)

// MetadataSize is the number of bytes of routing metadata that prefix
// every serialized share.
const MetadataSize = 5

// MaxShareCount bounds every 1-based count/threshold/index field this
// scheme encodes in a 4-bit nibble: groups, members, and their thresholds
// are all in 1..16 (0..15 once biased).
const MaxShareCount = 16

// Share is a parsed view of one serialized SSKR share: a point on a
// member-level Shamir polynomial, tagged with the policy metadata needed
// to route and eventually recombine it.
type Share struct {
	ID              uint16
	GroupCount      byte // g, 1..16
	GroupThreshold  byte // gt, 1..16
	GroupIndex      byte // gi, 0..15
	MemberThreshold byte // mt, 1..16
	MemberIndex     byte // mi, 0..15
	Payload         []byte
}

// GroupLabel returns the "gi" half of the human-readable share label the
// original test harness printed alongside each share for diagnostics.
func (s Share) GroupLabel() byte { return s.GroupIndex }

// MemberLabel returns the "mi" half of that label.
func (s Share) MemberLabel() byte { return s.MemberIndex }

// Serialize encodes the share into its fixed MetadataSize+len(Payload)
// byte wire form.
func (s Share) Serialize() ([]byte, error) {
	if s.GroupCount < 1 || s.GroupCount > MaxShareCount {
		return nil, fmt.Errorf("sskr: group count %d: %w", s.GroupCount, errs.IllegalValue)
	}
	if s.GroupThreshold < 1 || s.GroupThreshold > MaxShareCount {
		return nil, fmt.Errorf("sskr: group threshold %d: %w", s.GroupThreshold, errs.IllegalValue)
	}
	if s.MemberThreshold < 1 || s.MemberThreshold > MaxShareCount {
		return nil, fmt.Errorf("sskr: member threshold %d: %w", s.MemberThreshold, errs.IllegalValue)
	}
	if s.GroupIndex >= MaxShareCount || s.MemberIndex >= MaxShareCount {
		return nil, fmt.Errorf("sskr: group/member index out of range: %w", errs.IllegalValue)
	}

	out := make([]byte, MetadataSize+len(s.Payload))
	binary.BigEndian.PutUint16(out[0:2], s.ID)
	out[2] = ((s.GroupThreshold - 1) << 4) | (s.GroupCount - 1)
	out[3] = (s.GroupIndex << 4) | (s.MemberThreshold - 1)
	out[4] = s.MemberIndex & 0x0F
	copy(out[MetadataSize:], s.Payload)
	return out, nil
}

// ParseShare decodes one serialized share from buf. buf must be exactly
// MetadataSize+L bytes for some even L in [16,32]; that length range is
// validated by the caller, which knows the share width for the whole
// input batch, not by ParseShare itself.
func ParseShare(buf []byte) (Share, error) {
	if len(buf) < MetadataSize {
		return Share{}, fmt.Errorf("sskr: share shorter than metadata: %w", errs.IllegalValue)
	}
	s := Share{
		ID:              binary.BigEndian.Uint16(buf[0:2]),
		GroupThreshold:  ((buf[2] >> 4) & 0x0F) + 1,
		GroupCount:      (buf[2] & 0x0F) + 1,
		GroupIndex:      (buf[3] >> 4) & 0x0F,
		MemberThreshold: (buf[3] & 0x0F) + 1,
		MemberIndex:     buf[4] & 0x0F,
		Payload:         buf[MetadataSize:],
	}
	return s, nil
}
