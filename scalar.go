package api

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bwesterb/go-ristretto"
)

func uint64ToScalar(i uint64) *ristretto.Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:], i)
	var s ristretto.Scalar
	return s.SetBytes(&buf)
}

func zeroScalar() *ristretto.Scalar {
	var s ristretto.Scalar
	return s.SetZero()
}

func oneScalar() *ristretto.Scalar {
	var s ristretto.Scalar
	return s.SetOne()
}

func cloneScalar(s *ristretto.Scalar) *ristretto.Scalar {
	c := *s
	return &c
}

func negScalar(s *ristretto.Scalar) *ristretto.Scalar {
	var r ristretto.Scalar
	return r.Sub(zeroScalar(), s)
}

// randomScalar reads 64 uniform bytes from rng and reduces them mod l.
// A short read is an entropy failure, there is no fallback.
func randomScalar(rng io.Reader) (*ristretto.Scalar, error) {
	var buf [64]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return nil, fmt.Errorf("randomScalar %w: %v", ErrEntropy, err)
	}
	var s ristretto.Scalar
	return s.SetReduced(&buf), nil
}

func randomScalars(rng io.Reader, n int) ([]*ristretto.Scalar, error) {
	out := make([]*ristretto.Scalar, n)
	for i := range out {
		s, err := randomScalar(rng)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func fromBytesModOrderWide(data []byte) *ristretto.Scalar {
	var data64 [64]byte
	copy(data64[:], data)
	var hs ristretto.Scalar
	return hs.SetReduced(&data64)
}

// scalarFromCanonicalBytes accepts only the reduced little endian encoding.
func scalarFromCanonicalBytes(data []byte) (*ristretto.Scalar, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("scalarFromCanonicalBytes %w: length %d", ErrDecode, len(data))
	}
	s := fromBytesModOrderWide(data)
	if !bytes.Equal(s.Bytes(), data) {
		return nil, fmt.Errorf("scalarFromCanonicalBytes %w: non-canonical scalar", ErrDecode)
	}
	return s, nil
}

func pointFromBytes(data []byte) (*ristretto.Point, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("pointFromBytes %w: length %d", ErrDecode, len(data))
	}
	var buf [32]byte
	copy(buf[:], data)
	var p ristretto.Point
	if !p.SetBytes(&buf) || !bytes.Equal(p.Bytes(), data) {
		return nil, fmt.Errorf("pointFromBytes %w: invalid ristretto encoding", ErrDecode)
	}
	return &p, nil
}

var identityEncoding [32]byte

func isIdentity(p *ristretto.Point) bool {
	return bytes.Equal(p.Bytes(), identityEncoding[:])
}

func pointsEqual(a, b *ristretto.Point) bool {
	return bytes.Equal(a.Bytes(), b.Bytes())
}

func multiscalarMul(scalars []*ristretto.Scalar, points []*ristretto.Point) *ristretto.Point {
	if len(scalars) != len(points) {
		panic(fmt.Sprintf("multiscalarMul lengths do not match %d, %d", len(scalars), len(points)))
	}
	var p ristretto.Point
	p.SetZero()
	for i := range scalars {
		var t ristretto.Point
		t.ScalarMult(points[i], scalars[i])
		p.Add(&p, &t)
	}
	return &p
}

func innerProduct(a []*ristretto.Scalar, b []*ristretto.Scalar) *ristretto.Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("innerProduct lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	var zero ristretto.Scalar
	zero.SetZero()
	for i := range a {
		var r ristretto.Scalar
		zero.Add(&zero, r.Mul(a[i], b[i]))
	}
	return &zero
}

func addVec(a []*ristretto.Scalar, b []*ristretto.Scalar) []*ristretto.Scalar {
	if len(a) != len(b) {
		panic(fmt.Sprintf("addVec lengths of vectors do not match %d, %d", len(a), len(b)))
	}

	out := make([]*ristretto.Scalar, len(a))
	for i := range a {
		var r ristretto.Scalar
		out[i] = r.Add(a[i], b[i])
	}
	return out
}

// ScalarExp iterates the powers 1, x, x^2, ...
type ScalarExp struct {
	X        *ristretto.Scalar
	NextExpX *ristretto.Scalar
}

func NewScalarExp(x *ristretto.Scalar) *ScalarExp {
	return &ScalarExp{
		X:        x,
		NextExpX: oneScalar(),
	}
}

func (s *ScalarExp) Next() *ristretto.Scalar {
	out := cloneScalar(s.NextExpX)
	s.NextExpX.Mul(s.NextExpX, s.X)
	return out
}

func powers(x *ristretto.Scalar, n int) []*ristretto.Scalar {
	exp := NewScalarExp(x)
	out := make([]*ristretto.Scalar, n)
	for i := range out {
		out[i] = exp.Next()
	}
	return out
}

func ScalarExpVartime(x *ristretto.Scalar, n uint64) *ristretto.Scalar {
	result := oneScalar()
	aux := cloneScalar(x)

	for n > 0 {
		bit := n & 1
		if bit == 1 {
			result.Mul(result, aux)
		}
		n = n >> 1
		aux.Mul(aux, aux)
	}
	return result
}

// batchInvert returns the inverse of every element and the inverse of
// their product. Elements must be non-zero.
func batchInvert(scalars []*ristretto.Scalar) ([]*ristretto.Scalar, *ristretto.Scalar) {
	inv := make([]*ristretto.Scalar, len(scalars))
	all := oneScalar()
	for i, s := range scalars {
		var r ristretto.Scalar
		inv[i] = r.Inverse(s)
		all.Mul(all, inv[i])
	}
	return inv, all
}

func nextPowerOfTwo(v int) int {
	if v <= 1 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
