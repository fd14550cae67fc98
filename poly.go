package api

import "github.com/bwesterb/go-ristretto"

// VecPoly3 is a vector polynomial T0 + T1*x + T2*x^2 + T3*x^3.
type VecPoly3 struct {
	T0 []*ristretto.Scalar
	T1 []*ristretto.Scalar
	T2 []*ristretto.Scalar
	T3 []*ristretto.Scalar
}

func ZeroVecPoly3(n int) *VecPoly3 {
	vec := &VecPoly3{
		T0: make([]*ristretto.Scalar, n),
		T1: make([]*ristretto.Scalar, n),
		T2: make([]*ristretto.Scalar, n),
		T3: make([]*ristretto.Scalar, n),
	}
	for i := 0; i < n; i++ {
		vec.T0[i] = zeroScalar()
		vec.T1[i] = zeroScalar()
		vec.T2[i] = zeroScalar()
		vec.T3[i] = zeroScalar()
	}
	return vec
}

// SpecialInnerProduct computes <l(x), r(x)> assuming l.T0 and r.T2 are zero,
// which is how the R1CS prover lays its polynomials out.
func SpecialInnerProduct(l, r *VecPoly3) *Poly6 {
	var t2, t3, t4 ristretto.Scalar
	t2.Add(innerProduct(l.T1, r.T1), innerProduct(l.T2, r.T0))
	t3.Add(innerProduct(l.T2, r.T1), innerProduct(l.T3, r.T0))
	t4.Add(innerProduct(l.T1, r.T3), innerProduct(l.T3, r.T1))

	return &Poly6{
		T1: innerProduct(l.T1, r.T0),
		T2: &t2,
		T3: &t3,
		T4: &t4,
		T5: innerProduct(l.T2, r.T3),
		T6: innerProduct(l.T3, r.T3),
	}
}

func (v *VecPoly3) Eval(x *ristretto.Scalar) []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, len(v.T0))
	for i := range v.T0 {
		// T0 + x * (T1 + x * (T2 + x * T3))
		var r ristretto.Scalar
		r.Mul(v.T3[i], x)
		r.Add(v.T2[i], &r)
		r.Mul(&r, x)
		r.Add(v.T1[i], &r)
		r.Mul(&r, x)
		out[i] = r.Add(v.T0[i], &r)
	}
	return out
}

// Poly6 is a scalar polynomial with no constant term.
type Poly6 struct {
	T1, T2, T3, T4, T5, T6 *ristretto.Scalar
}

// x * (t1 + x * (t2 + x * (t3 + x * (t4 + x * (t5 + x * t6)))))
func (p *Poly6) Eval(x *ristretto.Scalar) *ristretto.Scalar {
	var r ristretto.Scalar
	r.Mul(x, p.T6)
	r.Add(p.T5, &r)
	r.Mul(x, &r)
	r.Add(p.T4, &r)
	r.Mul(x, &r)
	r.Add(p.T3, &r)
	r.Mul(x, &r)
	r.Add(p.T2, &r)
	r.Mul(x, &r)
	r.Add(p.T1, &r)
	return r.Mul(x, &r)
}
