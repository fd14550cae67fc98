package api

import (
	"encoding/hex"
	"errors"
	"log"
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
)

func TestTranscriptLifecycle(t *testing.T) {
	assert := assert.New(t)

	tt := NewTranscript("example")
	assert.Equal("example", tt.Label())
	assert.Equal(TranscriptInitialized, tt.State())

	R1CSDomainSep(tt)
	assert.Equal(TranscriptAbsorbing, tt.State())

	y := ChallengeScalar("y", tt)
	assert.NotNil(y)
	assert.Equal(TranscriptChallengeDerived, tt.State())

	appendInt64("m", 1, tt)
	assert.Equal(TranscriptAbsorbing, tt.State())

	assert.Equal([]TranscriptEvent{
		{Kind: EventAppend, Label: "dom-sep", Len: 7},
		{Kind: EventChallenge, Label: "y", Len: 64},
		{Kind: EventAppend, Label: "m", Len: 8},
	}, tt.Events())

	tt.Finalize()
	assert.Equal(TranscriptFinalized, tt.State())
	assert.Equal("Finalized", tt.State().String())
	assert.Panics(func() { ChallengeScalar("z", tt) })
	assert.Panics(func() { appendInt64("m", 2, tt) })
}

func TestTranscriptDeterminism(t *testing.T) {
	assert := assert.New(t)

	var base ristretto.Point
	base.SetBase()

	run := func(label string, value uint64) *ristretto.Scalar {
		tt := NewTranscript(label)
		R1CSDomainSep(tt)
		AppendPoint("V", &base, tt)
		AppendScalar("t_x", uint64ToScalar(value), tt)
		InnerproductDomainSep(4, tt)
		return ChallengeScalar("u", tt)
	}

	u1 := run("example", 1)
	u2 := run("example", 1)
	log.Println("u", hex.EncodeToString(u1.Bytes()))
	assert.True(u1.Equals(u2))
	assert.False(u1.Equals(run("example", 2)))
	assert.False(u1.Equals(run("other", 1)))

	// Reordering absorbs changes the challenge.
	tt := NewTranscript("example")
	AppendScalar("t_x", uint64ToScalar(1), tt)
	R1CSDomainSep(tt)
	AppendPoint("V", &base, tt)
	InnerproductDomainSep(4, tt)
	assert.False(u1.Equals(ChallengeScalar("u", tt)))
}

func TestValidateAndAppendPoint(t *testing.T) {
	assert := assert.New(t)

	tt := NewTranscript("example")
	var p ristretto.Point
	err := ValidateAndAppendPoint("A_I1", p.SetZero(), tt)
	assert.True(errors.Is(err, ErrVerification))
	assert.Len(tt.Events(), 0)

	assert.Nil(ValidateAndAppendPoint("A_I1", p.SetBase(), tt))
	assert.Len(tt.Events(), 1)
}
