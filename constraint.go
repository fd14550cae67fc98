package api

import (
	"fmt"

	"github.com/bwesterb/go-ristretto"
)

type VariableKind int

const (
	VariableCommitted VariableKind = iota
	VariableMultiplierLeft
	VariableMultiplierRight
	VariableMultiplierOutput
	VariableOne
)

// Variable is a handle to a value in the constraint system. Only the
// prover knows the value behind it.
type Variable struct {
	Kind  VariableKind
	Index int
}

func One() Variable {
	return Variable{Kind: VariableOne}
}

func (v Variable) String() string {
	switch v.Kind {
	case VariableCommitted:
		return fmt.Sprintf("Committed(%d)", v.Index)
	case VariableMultiplierLeft:
		return fmt.Sprintf("MultiplierLeft(%d)", v.Index)
	case VariableMultiplierRight:
		return fmt.Sprintf("MultiplierRight(%d)", v.Index)
	case VariableMultiplierOutput:
		return fmt.Sprintf("MultiplierOutput(%d)", v.Index)
	case VariableOne:
		return "One"
	}
	return fmt.Sprintf("Variable(%d, %d)", v.Kind, v.Index)
}

func (v Variable) LC() *LinearCombination {
	return NewLinearCombination(Term{Variable: v, Coefficient: oneScalar()})
}

type Term struct {
	Variable    Variable
	Coefficient *ristretto.Scalar
}

// LinearCombination is a sum of coefficient * variable terms. Its methods
// return new combinations and never modify the receiver.
type LinearCombination struct {
	Terms []Term
}

func NewLinearCombination(terms ...Term) *LinearCombination {
	return &LinearCombination{Terms: append([]Term(nil), terms...)}
}

// Constant is the combination c * One.
func Constant(c *ristretto.Scalar) *LinearCombination {
	return NewLinearCombination(Term{Variable: One(), Coefficient: cloneScalar(c)})
}

func (lc *LinearCombination) Add(other *LinearCombination) *LinearCombination {
	out := NewLinearCombination(lc.Terms...)
	out.Terms = append(out.Terms, other.Terms...)
	return out
}

func (lc *LinearCombination) Sub(other *LinearCombination) *LinearCombination {
	return lc.Add(other.Neg())
}

func (lc *LinearCombination) Neg() *LinearCombination {
	out := &LinearCombination{Terms: make([]Term, len(lc.Terms))}
	for i, t := range lc.Terms {
		out.Terms[i] = Term{Variable: t.Variable, Coefficient: negScalar(t.Coefficient)}
	}
	return out
}

func (lc *LinearCombination) Mul(s *ristretto.Scalar) *LinearCombination {
	out := &LinearCombination{Terms: make([]Term, len(lc.Terms))}
	for i, t := range lc.Terms {
		var c ristretto.Scalar
		out.Terms[i] = Term{Variable: t.Variable, Coefficient: c.Mul(t.Coefficient, s)}
	}
	return out
}

// ConstraintSystem is implemented by both Prover and Verifier, gadgets
// written against it declare identical constraints on both sides.
type ConstraintSystem interface {
	Transcript() *Transcript
	Multiply(left, right *LinearCombination) (Variable, Variable, Variable)
	Allocate(left, right *ristretto.Scalar) (Variable, Variable, Variable, error)
	Constrain(lc *LinearCombination)
}

// flattenConstraints folds the constraints with powers of z into the
// weight vectors wL, wR, wO (per multiplier), wV (per commitment) and the
// constant wc, such that <wL,aL> + <wR,aR> + <wO,aO> = <wV,v> + wc.
func flattenConstraints(constraints []*LinearCombination, z *ristretto.Scalar, n, m int) ([]*ristretto.Scalar, []*ristretto.Scalar, []*ristretto.Scalar, []*ristretto.Scalar, *ristretto.Scalar, error) {
	wL, wR, wO := zeroVec(n), zeroVec(n), zeroVec(n)
	wV := zeroVec(m)
	wc := zeroScalar()

	expZ := cloneScalar(z)
	for _, lc := range constraints {
		for _, term := range lc.Terms {
			var w ristretto.Scalar
			w.Mul(expZ, term.Coefficient)
			i := term.Variable.Index
			switch term.Variable.Kind {
			case VariableMultiplierLeft:
				if i < 0 || i >= n {
					return nil, nil, nil, nil, nil, fmt.Errorf("flattenConstraints %w: %s", ErrInvalidVariable, term.Variable)
				}
				wL[i].Add(wL[i], &w)
			case VariableMultiplierRight:
				if i < 0 || i >= n {
					return nil, nil, nil, nil, nil, fmt.Errorf("flattenConstraints %w: %s", ErrInvalidVariable, term.Variable)
				}
				wR[i].Add(wR[i], &w)
			case VariableMultiplierOutput:
				if i < 0 || i >= n {
					return nil, nil, nil, nil, nil, fmt.Errorf("flattenConstraints %w: %s", ErrInvalidVariable, term.Variable)
				}
				wO[i].Add(wO[i], &w)
			case VariableCommitted:
				if i < 0 || i >= m {
					return nil, nil, nil, nil, nil, fmt.Errorf("flattenConstraints %w: %s", ErrInvalidVariable, term.Variable)
				}
				wV[i].Sub(wV[i], &w)
			case VariableOne:
				wc.Sub(wc, &w)
			default:
				return nil, nil, nil, nil, nil, fmt.Errorf("flattenConstraints %w: %s", ErrInvalidVariable, term.Variable)
			}
		}
		expZ.Mul(expZ, z)
	}
	return wL, wR, wO, wV, wc, nil
}

func zeroVec(n int) []*ristretto.Scalar {
	out := make([]*ristretto.Scalar, n)
	for i := range out {
		out[i] = zeroScalar()
	}
	return out
}

// LinearRelation states sum(Coefficients[i] * v_i) + Constant == 0 over
// the committed values v_i.
type LinearRelation struct {
	Coefficients []*ristretto.Scalar
	Constant     *ristretto.Scalar
}

// ConstraintSpec is the public statement both roles agree on: the
// transcript domain and the relations over the committed values.
type ConstraintSpec struct {
	Domain    string
	Relations []LinearRelation
}

// EqualityConstraint states that the single committed value equals target.
func EqualityConstraint(domain string, target uint64) *ConstraintSpec {
	return &ConstraintSpec{
		Domain: domain,
		Relations: []LinearRelation{{
			Coefficients: []*ristretto.Scalar{oneScalar()},
			Constant:     negScalar(uint64ToScalar(target)),
		}},
	}
}

// DefaultConstraint is the statement "committed value equals 1".
func DefaultConstraint() *ConstraintSpec {
	return EqualityConstraint(DEFAULT_CONSTRAINT_DOMAIN, DEFAULT_CONSTRAINT_TARGET)
}

func (s *ConstraintSpec) Arity() int {
	arity := 0
	for _, r := range s.Relations {
		if len(r.Coefficients) > arity {
			arity = len(r.Coefficients)
		}
	}
	return arity
}

func (s *ConstraintSpec) bind(t *Transcript) {
	appendBytes([]byte("dom-sep"), []byte("constraint-spec v1"), t)
	appendInt64("relations", uint64(len(s.Relations)), t)
	for _, r := range s.Relations {
		appendInt64("arity", uint64(len(r.Coefficients)), t)
		for _, c := range r.Coefficients {
			AppendScalar("coefficient", c, t)
		}
		AppendScalar("constant", r.Constant, t)
	}
}

// Apply absorbs the statement into the session transcript and constrains
// the committed variables accordingly.
func (s *ConstraintSpec) Apply(cs ConstraintSystem, vars []Variable) error {
	if len(vars) < s.Arity() {
		return fmt.Errorf("ConstraintSpec Apply %w: arity %d, variables %d", ErrInvalidVariable, s.Arity(), len(vars))
	}
	s.bind(cs.Transcript())
	for _, r := range s.Relations {
		lc := Constant(r.Constant)
		for i, c := range r.Coefficients {
			lc = lc.Add(vars[i].LC().Mul(c))
		}
		cs.Constrain(lc)
	}
	return nil
}
