package api

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	HASH_TO_POINT_DOMAIN_TAG = "mc_onetime_key_hash_to_point"
	PARAMETERS_DOMAIN_TAG    = "mc_bulletproof_parameters"

	GENS_CAPACITY  = 64
	PARTY_CAPACITY = 1
)

type PedersenGens struct {
	B         *ristretto.Point
	BBlinding *ristretto.Point
}

// NewPedersenGens uses the basepoint for blinding and a blake2b derived
// point for values.
func NewPedersenGens() *PedersenGens {
	var base ristretto.Point
	base.SetBase()

	return &PedersenGens{
		B:         hashToPoint(&base),
		BBlinding: &base,
	}
}

// DefaultPedersenGens commits values on the basepoint and blindings on the
// SHA3-512 hash of its encoding.
func DefaultPedersenGens() *PedersenGens {
	var base ristretto.Point
	base.SetBase()

	h := sha3.New512()
	h.Write(base.Bytes())

	return &PedersenGens{
		B:         &base,
		BBlinding: pointFromUniformBytes(h.Sum(nil)),
	}
}

// Commit computes value * B + blinding * B_blinding.
func (pg *PedersenGens) Commit(value, blinding *ristretto.Scalar) *ristretto.Point {
	return multiscalarMul([]*ristretto.Scalar{value, blinding}, []*ristretto.Point{pg.B, pg.BBlinding})
}

type BulletproofGens struct {
	GensCapacity  int64
	PartyCapacity int64
	GVec          [][]*ristretto.Point
	HVec          [][]*ristretto.Point
}

func NewBulletproofGens(gensCapacity, partyCapacity int64) *BulletproofGens {
	b := &BulletproofGens{
		GensCapacity:  0,
		PartyCapacity: partyCapacity,
		GVec:          make([][]*ristretto.Point, partyCapacity),
		HVec:          make([][]*ristretto.Point, partyCapacity),
	}
	b.IncreaseCapacity(gensCapacity)
	return b
}

// IncreaseCapacity extends every party's chains up to capacity. Existing
// generators are kept, so a larger table is a prefix-compatible superset.
func (b *BulletproofGens) IncreaseCapacity(capacity int64) {
	if b.GensCapacity >= capacity {
		return
	}
	for i := 0; i < int(b.PartyCapacity); i++ {
		var party [4]byte
		binary.LittleEndian.PutUint32(party[:], uint32(i))
		label := []byte("G")
		label = append(label, party[:]...)
		b.GVec[i] = append(b.GVec[i], generatorsFromChain(label, b.GensCapacity, capacity)...)

		label[0] = 'H'
		b.HVec[i] = append(b.HVec[i], generatorsFromChain(label, b.GensCapacity, capacity)...)
	}
	b.GensCapacity = capacity
}

func generatorsFromChain(label []byte, from, to int64) []*ristretto.Point {
	chain := NewGeneratorsChain(label)
	chain.FastForward(from)
	points := make([]*ristretto.Point, to-from)
	for j := range points {
		points[j] = chain.Next()
	}
	return points
}

type GeneratorsChain struct {
	sha3.ShakeHash
}

func NewGeneratorsChain(label []byte) *GeneratorsChain {
	h := sha3.NewShake256()
	h.Write([]byte("GeneratorsChain"))
	h.Write(label)
	return &GeneratorsChain{h}
}

func (c *GeneratorsChain) FastForward(n int64) {
	for i := 0; i < int(n); i++ {
		var data [64]byte
		c.Read(data[:])
	}
}

func (c *GeneratorsChain) Next() *ristretto.Point {
	var data [64]byte
	c.Read(data[:])
	return pointFromUniformBytes(data[:])
}

func pointFromUniformBytes(key []byte) *ristretto.Point {
	var r1Bytes, r2Bytes [32]byte
	copy(r1Bytes[:], key[:32])
	copy(r2Bytes[:], key[32:])
	var r, r1, r2 ristretto.Point
	return r.Add(r1.SetElligator(&r1Bytes), r2.SetElligator(&r2Bytes))
}

func hashToPoint(public *ristretto.Point) *ristretto.Point {
	hash := blake2b.New512()
	hash.Write([]byte(HASH_TO_POINT_DOMAIN_TAG))
	hash.Write(public.Bytes())
	return pointFromUniformBytes(hash.Sum(nil))
}

type BulletproofGensShare struct {
	Gens  *BulletproofGens
	Share int
}

func (b *BulletproofGens) Share(j int) *BulletproofGensShare {
	if int64(j) >= b.PartyCapacity {
		panic(fmt.Sprintf("BulletproofGens Share %d out of party capacity %d", j, b.PartyCapacity))
	}
	return &BulletproofGensShare{
		Gens:  b,
		Share: j,
	}
}

// G returns a copy of the first n G generators of the share, callers may
// overwrite the returned slice.
func (g *BulletproofGensShare) G(n int) []*ristretto.Point {
	return append([]*ristretto.Point(nil), g.Gens.GVec[g.Share][:n]...)
}

func (g *BulletproofGensShare) H(n int) []*ristretto.Point {
	return append([]*ristretto.Point(nil), g.Gens.HVec[g.Share][:n]...)
}

// PublicParameters bundles the Pedersen and Bulletproof generators shared by
// every prover and verifier. It is immutable once built.
type PublicParameters struct {
	pc          *PedersenGens
	bp          *BulletproofGens
	fingerprint []byte
}

func NewPublicParameters(pc *PedersenGens, gensCapacity, partyCapacity int64) *PublicParameters {
	pp := &PublicParameters{
		pc: pc,
		bp: NewBulletproofGens(gensCapacity, partyCapacity),
	}
	pp.fingerprint = pp.computeFingerprint()
	return pp
}

var (
	defaultParameters     *PublicParameters
	defaultParametersOnce sync.Once
)

// DefaultPublicParameters returns the process-wide parameters, built on
// first use: default Pedersen generators, 64 generators for a single party.
func DefaultPublicParameters() *PublicParameters {
	defaultParametersOnce.Do(func() {
		defaultParameters = NewPublicParameters(DefaultPedersenGens(), GENS_CAPACITY, PARTY_CAPACITY)
	})
	return defaultParameters
}

func (pp *PublicParameters) PedersenGens() *PedersenGens {
	return pp.pc
}

func (pp *PublicParameters) GensCapacity() int64 {
	return pp.bp.GensCapacity
}

func (pp *PublicParameters) PartyCapacity() int64 {
	return pp.bp.PartyCapacity
}

// Fingerprint is a blake2b-256 digest over every generator. Sessions absorb
// it, so prover and verifier disagreeing on parameters cannot verify.
func (pp *PublicParameters) Fingerprint() []byte {
	return append([]byte(nil), pp.fingerprint...)
}

func (pp *PublicParameters) computeFingerprint() []byte {
	hash := blake2b.New256()
	hash.Write([]byte(PARAMETERS_DOMAIN_TAG))
	hash.Write(pp.pc.B.Bytes())
	hash.Write(pp.pc.BBlinding.Bytes())

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(pp.bp.GensCapacity))
	hash.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(pp.bp.PartyCapacity))
	hash.Write(buf[:])
	for i := range pp.bp.GVec {
		for j := range pp.bp.GVec[i] {
			hash.Write(pp.bp.GVec[i][j].Bytes())
			hash.Write(pp.bp.HVec[i][j].Bytes())
		}
	}
	return hash.Sum(nil)
}
