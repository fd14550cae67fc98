package api

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

// testRNG is a deterministic stream for reproducible proofs.
func testRNG(seed string) io.Reader {
	h := sha3.NewShake256()
	h.Write([]byte(seed))
	return h
}

func TestScalarHelpers(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("2a00000000000000000000000000000000000000000000000000000000000000", hex.EncodeToString(uint64ToScalar(42).Bytes()))
	assert.True(zeroScalar().Equals(negScalar(zeroScalar())))

	var sum ristretto.Scalar
	sum.Add(uint64ToScalar(7), negScalar(uint64ToScalar(7)))
	assert.True(sum.Equals(zeroScalar()))

	x := uint64ToScalar(3)
	for i, p := range powers(x, 6) {
		assert.True(p.Equals(ScalarExpVartime(x, uint64(i))), "power %d", i)
	}
	assert.Equal("f300000000000000000000000000000000000000000000000000000000000000", hex.EncodeToString(ScalarExpVartime(x, 5).Bytes()))

	a := []*ristretto.Scalar{uint64ToScalar(1), uint64ToScalar(2), uint64ToScalar(3)}
	b := []*ristretto.Scalar{uint64ToScalar(4), uint64ToScalar(5), uint64ToScalar(6)}
	assert.True(innerProduct(a, b).Equals(uint64ToScalar(32)))
	assert.True(addVec(a, b)[2].Equals(uint64ToScalar(9)))
	assert.Panics(func() { innerProduct(a, b[:2]) })

	inv, all := batchInvert(a)
	prod := oneScalar()
	for i := range a {
		var r ristretto.Scalar
		assert.True(r.Mul(a[i], inv[i]).Equals(oneScalar()))
		prod.Mul(prod, a[i])
	}
	var check ristretto.Scalar
	assert.True(check.Mul(prod, all).Equals(oneScalar()))

	for v, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128} {
		assert.Equal(want, nextPowerOfTwo(v), "nextPowerOfTwo(%d)", v)
	}
}

func TestRandomScalar(t *testing.T) {
	assert := assert.New(t)

	s1, err := randomScalar(testRNG("seed"))
	assert.Nil(err)
	s2, err := randomScalar(testRNG("seed"))
	assert.Nil(err)
	assert.True(s1.Equals(s2))

	s3, err := randomScalar(testRNG("other"))
	assert.Nil(err)
	assert.False(s1.Equals(s3))

	_, err = randomScalar(bytes.NewReader(make([]byte, 63)))
	assert.True(errors.Is(err, ErrEntropy))

	_, err = randomScalars(bytes.NewReader(make([]byte, 64*2)), 3)
	assert.True(errors.Is(err, ErrEntropy))
}

func TestCanonicalDecoding(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := uint64ToScalar(1234567)
	decoded, err := scalarFromCanonicalBytes(s.Bytes())
	require.Nil(err)
	assert.True(decoded.Equals(s))

	nonCanonical := bytes.Repeat([]byte{0xff}, 32)
	_, err = scalarFromCanonicalBytes(nonCanonical)
	assert.True(errors.Is(err, ErrDecode))
	_, err = scalarFromCanonicalBytes(s.Bytes()[:31])
	assert.True(errors.Is(err, ErrDecode))

	var base ristretto.Point
	base.SetBase()
	p, err := pointFromBytes(base.Bytes())
	require.Nil(err)
	assert.True(pointsEqual(p, &base))

	_, err = pointFromBytes(bytes.Repeat([]byte{0xff}, 32))
	assert.True(errors.Is(err, ErrDecode))
	_, err = pointFromBytes(base.Bytes()[1:])
	assert.True(errors.Is(err, ErrDecode))

	var zero ristretto.Point
	assert.True(isIdentity(zero.SetZero()))
	assert.False(isIdentity(&base))
}

func TestSpecialInnerProduct(t *testing.T) {
	assert := assert.New(t)

	rng := testRNG("poly")
	l := ZeroVecPoly3(3)
	r := ZeroVecPoly3(3)
	for i := 0; i < 3; i++ {
		for _, s := range []**ristretto.Scalar{&l.T1[i], &l.T2[i], &l.T3[i], &r.T0[i], &r.T1[i], &r.T3[i]} {
			v, err := randomScalar(rng)
			assert.Nil(err)
			*s = v
		}
	}

	x := uint64ToScalar(11)
	assert.True(SpecialInnerProduct(l, r).Eval(x).Equals(innerProduct(l.Eval(x), r.Eval(x))))
}
