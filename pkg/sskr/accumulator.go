package sskr

import (
	"fmt"

	"github.com/proxy-sskr/sskr/pkg/errs"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/shamir"
)

// Unused marks an empty slot in a bucket's x-vector. 0xFF is never a
// valid x-coordinate for a share (indices are 4-bit, 0..15), so it is
// safe as a sentinel.
const Unused = 0xFF

// groupBucket accumulates member shares for one group index until it has
// mt unique members, at which point it is sealed and its group share is
// recovered exactly once.
type groupBucket struct {
	mt    int
	x     []byte // len mt, Unused in empty slots
	y     []byte // mt * l
	count int
}

func newGroupBucket(mt, l int) *groupBucket {
	b := &groupBucket{mt: mt, x: make([]byte, mt), y: make([]byte, mt*l)}
	for i := range b.x {
		b.x[i] = Unused
	}
	return b
}

func (b *groupBucket) wipe() {
	for i := range b.y {
		b.y[i] = 0
	}
}

// Accumulator is the stateful, resumable two-level SSKR combine engine: a
// two-tier arena of arenas, owned exclusively by the Accumulator, with no
// cyclic ownership and no pre-reservation for the worst case.
type Accumulator struct {
	mac mac.KeyedMAC

	hasPending bool
	pendingID  uint16
	g, gt, l   int

	groups map[byte]*groupBucket

	topX     []byte // len gt
	topY     []byte // gt * l
	topCount int
}

// NewAccumulator constructs an Accumulator that verifies group and master
// secret recovery using m as the keyed-MAC collaborator.
func NewAccumulator(m mac.KeyedMAC) *Accumulator {
	return &Accumulator{mac: m}
}

// Reset drops all accumulator buckets and clears the pinned session
// identity, wiping every buffer it held. The next share accepted after
// Reset pins a new session.
func (a *Accumulator) Reset() {
	for _, b := range a.groups {
		b.wipe()
	}
	for i := range a.topY {
		a.topY[i] = 0
	}
	a.hasPending = false
	a.pendingID = 0
	a.g, a.gt, a.l = 0, 0, 0
	a.groups = nil
	a.topX = nil
	a.topY = nil
	a.topCount = 0
}

func (a *Accumulator) poison() {
	a.Reset()
}

// firstUnusedOrDuplicate scans xs left to right for candidate. It returns
// the index it wrote candidate into, or -1 if candidate was already
// present (duplicate) or no Unused slot remained (bucket already sealed
// and this share is extraneous) - both cases are silently ignored.
func firstUnusedOrDuplicate(xs []byte, candidate byte) int {
	for i, x := range xs {
		if x == candidate {
			return -1
		}
		if x == Unused {
			xs[i] = candidate
			return i
		}
	}
	return -1
}

// CombineShares feeds t serialized shares (concatenated, MetadataSize+L
// bytes each) into the accumulator. It is resumable: call it again with
// more shares if it returns (nil, false, nil). It returns the recovered
// master secret once the top-level group threshold is met, and any of the
// categorized errors otherwise. After an error, or after a
// successful recovery, the caller must call Reset before starting a new
// session.
func (a *Accumulator) CombineShares(t int, sharesBuf []byte) ([]byte, bool, error) {
	if t < 1 {
		return nil, false, fmt.Errorf("sskr: threshold %d: %w", t, errs.IllegalValue)
	}
	if len(sharesBuf) == 0 || len(sharesBuf)%t != 0 {
		return nil, false, fmt.Errorf("sskr: shares length %d not a multiple of t=%d: %w", len(sharesBuf), t, errs.IllegalValue)
	}

	shareLen := len(sharesBuf) / t
	l := shareLen - MetadataSize
	if l < shamir.MinSecretSize || l > shamir.MaxSecretSize || l%2 != 0 {
		return nil, false, fmt.Errorf("sskr: derived secret length %d: %w", l, errs.IllegalValue)
	}

	first, err := ParseShare(sharesBuf[:shareLen])
	if err != nil {
		return nil, false, err
	}

	if !a.hasPending {
		g, gt := int(first.GroupCount), int(first.GroupThreshold)
		if gt < 1 || gt > g || g > MaxShareCount {
			return nil, false, fmt.Errorf("sskr: group threshold %d of %d: %w", gt, g, errs.IllegalValue)
		}
		a.hasPending = true
		a.pendingID = first.ID
		a.g, a.gt, a.l = g, gt, l
		a.groups = make(map[byte]*groupBucket)
		a.topX = make([]byte, gt)
		for i := range a.topX {
			a.topX[i] = Unused
		}
		a.topY = make([]byte, gt*l)
	} else if l != a.l {
		return nil, false, fmt.Errorf("sskr: share length changed mid-session: %w", errs.IllegalValue)
	}

	for i := 0; i < t; i++ {
		off := i * shareLen
		sh, err := ParseShare(sharesBuf[off : off+shareLen])
		if err != nil {
			a.poison()
			return nil, false, err
		}

		if sh.ID != a.pendingID || int(sh.GroupCount) != a.g || int(sh.GroupThreshold) != a.gt {
			a.poison()
			return nil, false, fmt.Errorf("sskr: share (id=%#04x g=%d gt=%d) does not match pinned session: %w",
				sh.ID, sh.GroupCount, sh.GroupThreshold, errs.IllegalUse)
		}
		if sh.MemberIndex >= MaxShareCount || sh.MemberThreshold < 1 || sh.MemberThreshold > MaxShareCount {
			a.poison()
			return nil, false, fmt.Errorf("sskr: invalid member index/threshold: %w", errs.IllegalValue)
		}

		bucket, ok := a.groups[sh.GroupIndex]
		if !ok {
			bucket = newGroupBucket(int(sh.MemberThreshold), a.l)
			a.groups[sh.GroupIndex] = bucket
		} else if bucket.mt != int(sh.MemberThreshold) {
			a.poison()
			return nil, false, fmt.Errorf("sskr: group %d member threshold changed: %w", sh.GroupIndex, errs.IllegalValue)
		}

		slot := firstUnusedOrDuplicate(bucket.x, sh.MemberIndex)
		if slot == -1 {
			// duplicate, or this group is already sealed: ignore.
			continue
		}
		copy(bucket.y[slot*a.l:(slot+1)*a.l], sh.Payload)

		if slot != len(bucket.x)-1 {
			continue
		}

		groupSecret, ok, err := shamir.Combine(bucket.mt, bucket.x, bucket.y, a.mac)
		if err != nil {
			a.poison()
			return nil, false, err
		}
		if !ok {
			a.poison()
			return nil, false, fmt.Errorf("sskr: group %d digest verification failed: %w", sh.GroupIndex, errs.IllegalValue)
		}

		topSlot := firstUnusedOrDuplicate(a.topX, sh.GroupIndex)
		if topSlot == -1 {
			// this group's share was already routed to the top level.
			for i := range groupSecret {
				groupSecret[i] = 0
			}
			continue
		}
		copy(a.topY[topSlot*a.l:(topSlot+1)*a.l], groupSecret)
		for i := range groupSecret {
			groupSecret[i] = 0
		}

		if topSlot != len(a.topX)-1 {
			continue
		}

		secret, ok, err := shamir.Combine(a.gt, a.topX, a.topY, a.mac)
		if err != nil {
			a.poison()
			return nil, false, err
		}
		if !ok {
			a.poison()
			return nil, false, fmt.Errorf("sskr: master secret digest verification failed: %w", errs.IllegalValue)
		}
		return secret, true, nil
	}

	return nil, false, nil
}
