package api

import (
	"fmt"
	"math/bits"

	"github.com/bwesterb/go-ristretto"
)

type InnerProductProof struct {
	LVec []*ristretto.Point
	RVec []*ristretto.Point
	A, B *ristretto.Scalar
}

// CreateInnerProductProof proves knowledge of a, b with
// P = <a, G'> + <b, H'> + <a, b> Q, where G' = gFactors * G and
// H' = hFactors * H. The inputs are not modified.
func CreateInnerProductProof(transcript *Transcript, Q *ristretto.Point, gFactors, hFactors []*ristretto.Scalar, gVec, hVec []*ristretto.Point, aVec, bVec []*ristretto.Scalar) *InnerProductProof {
	n := len(gVec)

	if len(gVec) != n ||
		len(hVec) != n ||
		len(aVec) != n ||
		len(bVec) != n ||
		len(gFactors) != n ||
		len(hFactors) != n {
		panic(fmt.Sprintf("Invalid input vectors %d, %d, %d, %d, %d, %d", len(gVec), len(hVec), len(aVec), len(bVec), len(gFactors), len(hFactors)))
	}

	if bits.OnesCount32(uint32(n)) != 1 {
		panic(fmt.Sprintf("CreateInnerProductProof Invalid n %d", n))
	}

	G := append([]*ristretto.Point(nil), gVec...)
	H := append([]*ristretto.Point(nil), hVec...)
	a := make([]*ristretto.Scalar, n)
	b := make([]*ristretto.Scalar, n)
	for i := 0; i < n; i++ {
		a[i] = cloneScalar(aVec[i])
		b[i] = cloneScalar(bVec[i])
	}

	InnerproductDomainSep(uint64(n), transcript)

	var LVec, RVec []*ristretto.Point

	// The first round folds the generator factors in.
	if n != 1 {
		n = n / 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)

		chainAL := make([]*ristretto.Scalar, 0, 2*n+1)
		for i := range aL {
			var r ristretto.Scalar
			chainAL = append(chainAL, r.Mul(aL[i], gFactors[n+i]))
		}
		for i := range bR {
			var r ristretto.Scalar
			chainAL = append(chainAL, r.Mul(bR[i], hFactors[i]))
		}
		chainAL = append(chainAL, cL)

		chainGR := make([]*ristretto.Point, 0, 2*n+1)
		chainGR = append(chainGR, gR...)
		chainGR = append(chainGR, hL...)
		chainGR = append(chainGR, Q)

		L := multiscalarMul(chainAL, chainGR)

		chainAR := make([]*ristretto.Scalar, 0, 2*n+1)
		for i := range aR {
			var r ristretto.Scalar
			chainAR = append(chainAR, r.Mul(aR[i], gFactors[i]))
		}
		for i := range bL {
			var r ristretto.Scalar
			chainAR = append(chainAR, r.Mul(bL[i], hFactors[n+i]))
		}
		chainAR = append(chainAR, cR)

		chainGL := make([]*ristretto.Point, 0, 2*n+1)
		chainGL = append(chainGL, gL...)
		chainGL = append(chainGL, hR...)
		chainGL = append(chainGL, Q)
		R := multiscalarMul(chainAR, chainGL)

		LVec = append(LVec, L)
		RVec = append(RVec, R)

		AppendPoint("L", L, transcript)
		AppendPoint("R", R, transcript)

		u := ChallengeScalar("u", transcript)
		var uInv ristretto.Scalar
		uInv.Inverse(u)

		for i := 0; i < n; i++ {
			var r1, r2 ristretto.Scalar
			aL[i].Add(r1.Mul(aL[i], u), r2.Mul(&uInv, aR[i]))
			var r3, r4 ristretto.Scalar
			bL[i].Add(r3.Mul(bL[i], &uInv), r4.Mul(u, bR[i]))
			var r5, r6 ristretto.Scalar
			r5.Mul(&uInv, gFactors[i])
			r6.Mul(u, gFactors[n+i])
			gL[i] = multiscalarMul([]*ristretto.Scalar{&r5, &r6}, []*ristretto.Point{gL[i], gR[i]})
			var r7, r8 ristretto.Scalar
			r7.Mul(u, hFactors[i])
			r8.Mul(&uInv, hFactors[n+i])
			hL[i] = multiscalarMul([]*ristretto.Scalar{&r7, &r8}, []*ristretto.Point{hL[i], hR[i]})
		}

		a = aL
		b = bL
		G = gL
		H = hL
	}

	for n != 1 {
		n = n / 2

		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)

		chainAL := make([]*ristretto.Scalar, 0, 2*n+1)
		chainAL = append(chainAL, aL...)
		chainAL = append(chainAL, bR...)
		chainAL = append(chainAL, cL)
		chainGR := make([]*ristretto.Point, 0, 2*n+1)
		chainGR = append(chainGR, gR...)
		chainGR = append(chainGR, hL...)
		chainGR = append(chainGR, Q)
		L := multiscalarMul(chainAL, chainGR)

		chainAR := make([]*ristretto.Scalar, 0, 2*n+1)
		chainAR = append(chainAR, aR...)
		chainAR = append(chainAR, bL...)
		chainAR = append(chainAR, cR)
		chainGL := make([]*ristretto.Point, 0, 2*n+1)
		chainGL = append(chainGL, gL...)
		chainGL = append(chainGL, hR...)
		chainGL = append(chainGL, Q)
		R := multiscalarMul(chainAR, chainGL)

		LVec = append(LVec, L)
		RVec = append(RVec, R)
		AppendPoint("L", L, transcript)
		AppendPoint("R", R, transcript)

		u := ChallengeScalar("u", transcript)
		var uInv ristretto.Scalar
		uInv.Inverse(u)

		for i := 0; i < n; i++ {
			var r1, r2 ristretto.Scalar
			aL[i].Add(r1.Mul(aL[i], u), r2.Mul(&uInv, aR[i]))
			var r3, r4 ristretto.Scalar
			bL[i].Add(r3.Mul(bL[i], &uInv), r4.Mul(u, bR[i]))
			gL[i] = multiscalarMul([]*ristretto.Scalar{&uInv, u}, []*ristretto.Point{gL[i], gR[i]})
			hL[i] = multiscalarMul([]*ristretto.Scalar{u, &uInv}, []*ristretto.Point{hL[i], hR[i]})
		}

		a = aL
		b = bL
		G = gL
		H = hL
	}

	return &InnerProductProof{
		LVec: LVec,
		RVec: RVec,
		A:    a[0],
		B:    b[0],
	}
}

// VerificationScalars replays the challenges and returns u_i^2, u_i^-2 and
// the vector s with s_i = prod u_j^{±1} used to collapse the generators.
func (p *InnerProductProof) VerificationScalars(n int, transcript *Transcript) ([]*ristretto.Scalar, []*ristretto.Scalar, []*ristretto.Scalar, error) {
	lgN := len(p.LVec)
	if lgN >= 32 || len(p.RVec) != lgN {
		return nil, nil, nil, fmt.Errorf("VerificationScalars %w: rounds %d, %d", ErrVerification, len(p.LVec), len(p.RVec))
	}
	if n != 1<<uint(lgN) {
		return nil, nil, nil, fmt.Errorf("VerificationScalars %w: n %d, rounds %d", ErrVerification, n, lgN)
	}

	InnerproductDomainSep(uint64(n), transcript)

	challenges := make([]*ristretto.Scalar, lgN)
	for i := range p.LVec {
		if err := ValidateAndAppendPoint("L", p.LVec[i], transcript); err != nil {
			return nil, nil, nil, err
		}
		if err := ValidateAndAppendPoint("R", p.RVec[i], transcript); err != nil {
			return nil, nil, nil, err
		}
		challenges[i] = ChallengeScalar("u", transcript)
	}

	challengesInv, allInv := batchInvert(challenges)

	uSq := make([]*ristretto.Scalar, lgN)
	uInvSq := make([]*ristretto.Scalar, lgN)
	for i := range challenges {
		var sq, invSq ristretto.Scalar
		uSq[i] = sq.Mul(challenges[i], challenges[i])
		uInvSq[i] = invSq.Mul(challengesInv[i], challengesInv[i])
	}

	s := make([]*ristretto.Scalar, n)
	s[0] = allInv
	for i := 1; i < n; i++ {
		lgI := 31 - bits.LeadingZeros32(uint32(i))
		k := 1 << uint(lgI)
		var si ristretto.Scalar
		s[i] = si.Mul(s[i-k], uSq[(lgN-1)-lgI])
	}

	return uSq, uInvSq, s, nil
}

// Verify checks the argument on its own against the commitment P.
func (p *InnerProductProof) Verify(n int, transcript *Transcript, gFactors, hFactors []*ristretto.Scalar, P, Q *ristretto.Point, G, H []*ristretto.Point) error {
	if len(gFactors) != n || len(hFactors) != n || len(G) != n || len(H) != n {
		return fmt.Errorf("InnerProductProof Verify %w: vector lengths", ErrVerification)
	}
	uSq, uInvSq, s, err := p.VerificationScalars(n, transcript)
	if err != nil {
		return err
	}

	scalars := make([]*ristretto.Scalar, 0, 1+2*n+2*len(uSq))
	points := make([]*ristretto.Point, 0, 1+2*n+2*len(uSq))

	var ab ristretto.Scalar
	scalars = append(scalars, ab.Mul(p.A, p.B))
	points = append(points, Q)
	for i := 0; i < n; i++ {
		var g ristretto.Scalar
		g.Mul(p.A, s[i])
		scalars = append(scalars, g.Mul(&g, gFactors[i]))
	}
	points = append(points, G...)
	for i := 0; i < n; i++ {
		var h ristretto.Scalar
		h.Mul(p.B, s[n-1-i])
		scalars = append(scalars, h.Mul(&h, hFactors[i]))
	}
	points = append(points, H...)
	for i := range uSq {
		scalars = append(scalars, negScalar(uSq[i]))
	}
	points = append(points, p.LVec...)
	for i := range uInvSq {
		scalars = append(scalars, negScalar(uInvSq[i]))
	}
	points = append(points, p.RVec...)

	if !pointsEqual(P, multiscalarMul(scalars, points)) {
		return fmt.Errorf("InnerProductProof Verify %w", ErrVerification)
	}
	return nil
}

func (p *InnerProductProof) SerializedSize() int {
	return (2*len(p.LVec) + 2) * 32
}

func (p *InnerProductProof) ToBytes() []byte {
	buf := make([]byte, 0, p.SerializedSize())

	for i := range p.LVec {
		buf = append(buf, p.LVec[i].Bytes()...)
		buf = append(buf, p.RVec[i].Bytes()...)
	}
	buf = append(buf, p.A.Bytes()...)
	buf = append(buf, p.B.Bytes()...)

	return buf
}

func InnerProductProofFromBytes(data []byte) (*InnerProductProof, error) {
	if len(data)%32 != 0 {
		return nil, fmt.Errorf("InnerProductProofFromBytes %w: length %d", ErrDecode, len(data))
	}
	elements := len(data) / 32
	if elements < 2 || (elements-2)%2 != 0 {
		return nil, fmt.Errorf("InnerProductProofFromBytes %w: elements %d", ErrDecode, elements)
	}
	lgN := (elements - 2) / 2
	if lgN >= 32 {
		return nil, fmt.Errorf("InnerProductProofFromBytes %w: rounds %d", ErrDecode, lgN)
	}

	proof := &InnerProductProof{
		LVec: make([]*ristretto.Point, lgN),
		RVec: make([]*ristretto.Point, lgN),
	}
	var err error
	for i := 0; i < lgN; i++ {
		pos := 2 * i * 32
		if proof.LVec[i], err = pointFromBytes(data[pos : pos+32]); err != nil {
			return nil, err
		}
		if proof.RVec[i], err = pointFromBytes(data[pos+32 : pos+64]); err != nil {
			return nil, err
		}
	}
	pos := 2 * lgN * 32
	if proof.A, err = scalarFromCanonicalBytes(data[pos : pos+32]); err != nil {
		return nil, err
	}
	if proof.B, err = scalarFromCanonicalBytes(data[pos+32 : pos+64]); err != nil {
		return nil, err
	}
	return proof, nil
}
