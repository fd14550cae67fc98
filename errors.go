package api

import "errors"

var (
	// ErrEntropy is returned when the random source cannot supply a scalar.
	ErrEntropy = errors.New("EntropyFailure")
	// ErrDecode is returned for bytes that are not a valid commitment, proof or envelope.
	ErrDecode = errors.New("DecodeError")
	// ErrUnsatisfiedConstraint is returned by the prover when the secret
	// assignment does not satisfy the declared constraints.
	ErrUnsatisfiedConstraint = errors.New("UnsatisfiedConstraint")
	// ErrVerification is the single rejection reported by the verifier.
	ErrVerification = errors.New("VerificationFailure")
	// ErrInvalidGeneratorsLength is returned when the generators cannot
	// cover the number of multipliers or parties of a proof.
	ErrInvalidGeneratorsLength = errors.New("InvalidGeneratorsLength")
	ErrMissingAssignment       = errors.New("MissingAssignment")
	ErrInvalidVariable         = errors.New("InvalidVariable")
	ErrSessionFinalized        = errors.New("SessionFinalized")
	ErrSignature               = errors.New("InvalidSignature")
)
