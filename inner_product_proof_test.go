package api

import (
	"encoding/hex"
	"errors"
	"log"
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInnerProductProof(t *testing.T, n int) {
	assert := assert.New(t)
	require := require.New(t)

	rng := testRNG("ipp")
	bp := NewBulletproofGens(int64(n), 1)
	G := bp.Share(0).G(n)
	H := bp.Share(0).H(n)

	pc := DefaultPedersenGens()
	w, err := randomScalar(rng)
	require.Nil(err)
	var Q ristretto.Point
	Q.ScalarMult(pc.B, w)

	a, err := randomScalars(rng, n)
	require.Nil(err)
	b, err := randomScalars(rng, n)
	require.Nil(err)
	y, err := randomScalar(rng)
	require.Nil(err)

	var yInv ristretto.Scalar
	yInv.Inverse(y)
	gFactors := make([]*ristretto.Scalar, n)
	for i := range gFactors {
		gFactors[i] = oneScalar()
	}
	hFactors := powers(&yInv, n)

	// P = <a, G> + <b, H'> + <a, b> Q
	scalars := []*ristretto.Scalar{innerProduct(a, b)}
	points := []*ristretto.Point{&Q}
	for i := 0; i < n; i++ {
		var s ristretto.Scalar
		scalars = append(scalars, a[i], s.Mul(b[i], hFactors[i]))
		points = append(points, G[i], H[i])
	}
	P := multiscalarMul(scalars, points)

	proof := CreateInnerProductProof(NewTranscript("innerproducttest"), &Q, gFactors, hFactors, G, H, a, b)
	assert.Len(proof.LVec, len(proof.RVec))
	assert.Equal(1<<len(proof.LVec), n)
	log.Println("ipp", n, hex.EncodeToString(proof.ToBytes()))

	assert.Nil(proof.Verify(n, NewTranscript("innerproducttest"), gFactors, hFactors, P, &Q, G, H))
	err = proof.Verify(n, NewTranscript("other"), gFactors, hFactors, P, &Q, G, H)
	if n > 1 {
		assert.True(errors.Is(err, ErrVerification))
	}

	var P2 ristretto.Point
	P2.Add(P, &Q)
	err = proof.Verify(n, NewTranscript("innerproducttest"), gFactors, hFactors, &P2, &Q, G, H)
	assert.True(errors.Is(err, ErrVerification))

	decoded, err := InnerProductProofFromBytes(proof.ToBytes())
	require.Nil(err)
	assert.Equal(proof.ToBytes(), decoded.ToBytes())
	assert.Nil(decoded.Verify(n, NewTranscript("innerproducttest"), gFactors, hFactors, P, &Q, G, H))

	// Inputs stay untouched by the folding.
	assert.Equal(bp.Share(0).G(n), G)
	assert.True(innerProduct(a, b).Equals(scalars[0]))
}

func TestInnerProductProof(t *testing.T) {
	for _, n := range []int{1, 2, 4, 16, 64} {
		testInnerProductProof(t, n)
	}
}

func TestInnerProductProofFromBytesRejects(t *testing.T) {
	assert := assert.New(t)

	for _, size := range []int{0, 31, 32, 96, 33} {
		_, err := InnerProductProofFromBytes(make([]byte, size))
		assert.True(errors.Is(err, ErrDecode), "size %d", size)
	}
	_, err := InnerProductProofFromBytes(make([]byte, 66*32))
	assert.True(errors.Is(err, ErrDecode))

	assert.Panics(func() {
		CreateInnerProductProof(NewTranscript("x"), nil, nil, nil, make([]*ristretto.Point, 3), nil, nil, nil)
	})
}
