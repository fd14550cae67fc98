package api

import (
	"encoding/binary"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

type TranscriptState int

const (
	TranscriptInitialized TranscriptState = iota
	TranscriptAbsorbing
	TranscriptChallengeDerived
	TranscriptFinalized
)

func (s TranscriptState) String() string {
	switch s {
	case TranscriptInitialized:
		return "Initialized"
	case TranscriptAbsorbing:
		return "Absorbing"
	case TranscriptChallengeDerived:
		return "ChallengeDerived"
	case TranscriptFinalized:
		return "Finalized"
	}
	return fmt.Sprintf("TranscriptState(%d)", int(s))
}

const (
	EventAppend    = "append"
	EventChallenge = "challenge"
)

// TranscriptEvent records one absorb or squeeze. Two sessions that agree
// on their events (and the bytes behind them) derive the same challenges.
type TranscriptEvent struct {
	Kind  string
	Label string
	Len   int
}

// Transcript is a merlin transcript with an explicit lifecycle:
// Initialized -> Absorbing <-> ChallengeDerived -> Finalized.
type Transcript struct {
	t      *merlin.Transcript
	label  string
	state  TranscriptState
	events []TranscriptEvent
}

func NewTranscript(label string) *Transcript {
	return &Transcript{
		t:     merlin.NewTranscript(label),
		label: label,
		state: TranscriptInitialized,
	}
}

func (t *Transcript) Label() string {
	return t.label
}

func (t *Transcript) State() TranscriptState {
	return t.state
}

func (t *Transcript) Events() []TranscriptEvent {
	return append([]TranscriptEvent(nil), t.events...)
}

func (t *Transcript) AppendMessage(label, message []byte) {
	t.mustBeLive("AppendMessage")
	t.t.AppendMessage(label, message)
	t.events = append(t.events, TranscriptEvent{Kind: EventAppend, Label: string(label), Len: len(message)})
	t.state = TranscriptAbsorbing
}

func (t *Transcript) ExtractBytes(label []byte, outLen int) []byte {
	t.mustBeLive("ExtractBytes")
	data := t.t.ExtractBytes(label, outLen)
	t.events = append(t.events, TranscriptEvent{Kind: EventChallenge, Label: string(label), Len: outLen})
	t.state = TranscriptChallengeDerived
	return data
}

// Finalize ends the session. Any later use panics.
func (t *Transcript) Finalize() {
	t.state = TranscriptFinalized
}

func (t *Transcript) mustBeLive(op string) {
	if t.state == TranscriptFinalized {
		panic(fmt.Sprintf("Transcript %s %s on finalized transcript", t.label, op))
	}
}

func appendBytes(field, data []byte, t *Transcript) {
	t.AppendMessage(field, data)
}

func appendInt64(label string, i uint64, t *Transcript) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, i)
	appendBytes([]byte(label), buf, t)
}

func R1CSDomainSep(t *Transcript) {
	appendBytes([]byte("dom-sep"), []byte("r1cs v1"), t)
}

func R1CS1PhaseDomainSep(t *Transcript) {
	appendBytes([]byte("dom-sep"), []byte("r1cs-1phase"), t)
}

func InnerproductDomainSep(n uint64, t *Transcript) {
	appendBytes([]byte("dom-sep"), []byte("ipp v1"), t)
	appendInt64("n", n, t)
}

func ChallengeScalar(label string, t *Transcript) *ristretto.Scalar {
	return fromBytesModOrderWide(t.ExtractBytes([]byte(label), 64))
}

func AppendScalar(label string, s *ristretto.Scalar, t *Transcript) {
	appendBytes([]byte(label), s.Bytes(), t)
}

func AppendPoint(label string, p *ristretto.Point, t *Transcript) {
	appendBytes([]byte(label), p.Bytes(), t)
}

// ValidateAndAppendPoint is the verifier side of AppendPoint: a prover
// message must never be the identity.
func ValidateAndAppendPoint(label string, p *ristretto.Point, t *Transcript) error {
	if isIdentity(p) {
		return fmt.Errorf("ValidateAndAppendPoint %w: identity %s", ErrVerification, label)
	}
	AppendPoint(label, p, t)
	return nil
}
