// Package transport implements the host-facing command dispatcher: a
// narrow opcode table an enclosing handler would use to drive the SSKR
// core. It plays the role a secure-element applet's command processor
// would play, translating a flat request/response byte envelope into
// calls against the core.
package transport

import (
	"errors"
	"fmt"

	"github.com/proxy-sskr/sskr/pkg/errs"
	"github.com/proxy-sskr/sskr/pkg/mac"
	"github.com/proxy-sskr/sskr/pkg/random"
	"github.com/proxy-sskr/sskr/pkg/sskr"
	"github.com/sirupsen/logrus"
)

// Opcode identifies one of the four operations this host recognizes.
type Opcode byte

const (
	OpEcho            Opcode = 0x00
	OpGenerateShares  Opcode = 0x01
	OpCombineShares   Opcode = 0x02
	OpReset           Opcode = 0x03
)

// Status mirrors the core's categorical errors, plus OK and an opcode
// dispatch failure for malformed requests.
type Status byte

const (
	StatusOK Status = iota
	StatusIllegalValue
	StatusIllegalUse
	StatusResourceExhausted
	StatusUnsupportedOpcode
)

// Request is one opcode dispatch, carrying its parameters as a flat byte
// buffer.
type Request struct {
	Opcode Opcode
	Params []byte
}

// Response carries the dispatch outcome: a status and, on success, the
// opcode's output bytes.
type Response struct {
	Status Status
	Data   []byte
}

// Host dispatches Requests against an SSKR accumulator, using src and m as
// its random-source and keyed-MAC collaborators.
type Host struct {
	src random.Source
	mac mac.KeyedMAC
	acc *sskr.Accumulator
	log *logrus.Logger
}

// NewHost constructs a Host. log may be nil, in which case a silent
// logger is used.
func NewHost(src random.Source, m mac.KeyedMAC, log *logrus.Logger) *Host {
	if log == nil {
		log = logrus.New()
		log.SetOutput(nowhere{})
	}
	return &Host{src: src, mac: m, acc: sskr.NewAccumulator(m), log: log}
}

type nowhere struct{}

func (nowhere) Write(p []byte) (int, error) { return len(p), nil }

// Handle dispatches req to the appropriate core operation.
func (h *Host) Handle(req Request) Response {
	h.log.WithField("opcode", req.Opcode).Debug("dispatching request")

	switch req.Opcode {
	case OpEcho:
		return Response{Status: StatusOK, Data: req.Params}

	case OpGenerateShares:
		return h.handleGenerateShares(req.Params)

	case OpCombineShares:
		return h.handleCombineShares(req.Params)

	case OpReset:
		h.acc.Reset()
		h.log.Info("accumulator reset")
		return Response{Status: StatusOK}

	default:
		h.log.WithField("opcode", req.Opcode).Warn("unsupported opcode")
		return Response{Status: StatusUnsupportedOpcode}
	}
}

// handleGenerateShares parses Params as: gt (1 byte), g (1 byte),
// groups (2*g bytes of [t_i, n_i]), secret (remaining bytes).
func (h *Host) handleGenerateShares(params []byte) Response {
	if len(params) < 2 {
		return Response{Status: StatusIllegalValue}
	}
	gt := int(params[0])
	g := int(params[1])
	if len(params) < 2+2*g {
		return Response{Status: StatusIllegalValue}
	}

	groups := make([]sskr.Group, g)
	for i := 0; i < g; i++ {
		groups[i] = sskr.Group{
			Threshold: int(params[2+i*2]),
			Count:     int(params[2+i*2+1]),
		}
	}
	secret := params[2+2*g:]

	shares, err := sskr.GenerateShares(gt, groups, secret, h.src, h.mac)
	if err != nil {
		h.log.WithError(err).Warn("generate-shares failed")
		return Response{Status: statusFor(err)}
	}
	out, err := sskr.SerializeAll(shares)
	if err != nil {
		h.log.WithError(err).Warn("generate-shares serialization failed")
		return Response{Status: statusFor(err)}
	}
	h.log.WithField("share_count", len(shares)).Info("generated shares")
	return Response{Status: StatusOK, Data: out}
}

// handleCombineShares parses Params as: t (1 byte), shares (remaining
// bytes). It returns the secret on success, or an empty Data slice when
// more shares are needed.
func (h *Host) handleCombineShares(params []byte) Response {
	if len(params) < 1 {
		return Response{Status: StatusIllegalValue}
	}
	t := int(params[0])
	shares := params[1:]

	secret, ok, err := h.acc.CombineShares(t, shares)
	if err != nil {
		h.log.WithError(err).Warn("combine-shares failed; accumulator poisoned")
		return Response{Status: statusFor(err)}
	}
	if !ok {
		h.log.Debug("combine-shares: more shares needed")
		return Response{Status: StatusOK}
	}
	h.log.Info("combine-shares: master secret recovered")
	return Response{Status: StatusOK, Data: secret}
}

func statusFor(err error) Status {
	switch {
	case errors.Is(err, errs.IllegalUse):
		return StatusIllegalUse
	case errors.Is(err, errs.ResourceExhausted):
		return StatusResourceExhausted
	case errors.Is(err, errs.IllegalValue):
		return StatusIllegalValue
	default:
		return StatusIllegalValue
	}
}

// EncodeGenerateSharesParams is a convenience builder for handleGenerateShares's
// wire layout, used by callers (the CLI, tests) that think in terms of
// (groupThreshold, groups, secret) rather than a raw byte buffer.
func EncodeGenerateSharesParams(groupThreshold int, groups []sskr.Group, secret []byte) ([]byte, error) {
	if groupThreshold < 0 || groupThreshold > 0xFF || len(groups) > 0xFF {
		return nil, fmt.Errorf("transport: group threshold/count out of range: %w", errs.IllegalValue)
	}
	out := make([]byte, 2, 2+2*len(groups)+len(secret))
	out[0] = byte(groupThreshold)
	out[1] = byte(len(groups))
	for _, grp := range groups {
		if grp.Threshold < 0 || grp.Threshold > 0xFF || grp.Count < 0 || grp.Count > 0xFF {
			return nil, fmt.Errorf("transport: group policy out of range: %w", errs.IllegalValue)
		}
		out = append(out, byte(grp.Threshold), byte(grp.Count))
	}
	out = append(out, secret...)
	return out, nil
}

// EncodeCombineSharesParams is the COMBINE_SHARES counterpart.
func EncodeCombineSharesParams(t int, shares []byte) []byte {
	out := make([]byte, 1+len(shares))
	out[0] = byte(t)
	copy(out[1:], shares)
	return out
}
