package api

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/ChainSafe/go-schnorrkel"
	"github.com/dchest/blake2b"
	"golang.org/x/sync/errgroup"
)

const (
	ENVELOPE_HASH_DOMAIN_TAG = "mc_transaction_envelope"
	ENVELOPE_SIGNING_CONTEXT = "Transaction envelope signature"
)

// Bundle is an encoded commitment together with the proof about it.
type Bundle struct {
	Commitment []byte
	Proof      []byte
}

// Envelope carries independent proofs for a transaction value and its fee.
type Envelope struct {
	Value *Bundle
	Fee   *Bundle

	Signer    [32]byte
	Signature [64]byte
}

func NewEnvelope(value, fee uint64) (*Envelope, error) {
	return NewEnvelopeWithSpec(DefaultPublicParameters(), DefaultConstraint(), value, fee, rand.Reader)
}

// NewEnvelopeWithSpec proves value and fee concurrently. Both sessions draw
// from rng through a lock, so any reader works.
func NewEnvelopeWithSpec(params *PublicParameters, spec *ConstraintSpec, value, fee uint64, rng io.Reader) (*Envelope, error) {
	rng = &lockedReader{r: rng}
	e := &Envelope{}
	var g errgroup.Group
	g.Go(func() error {
		b, err := proveBundle(params, spec, value, rng)
		if err != nil {
			return fmt.Errorf("NewEnvelope value %w", err)
		}
		e.Value = b
		return nil
	})
	g.Go(func() error {
		b, err := proveBundle(params, spec, fee, rng)
		if err != nil {
			return fmt.Errorf("NewEnvelope fee %w", err)
		}
		e.Fee = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return e, nil
}

// lockedReader serializes reads so every scalar comes from one whole read.
type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return io.ReadFull(l.r, p)
}

func proveBundle(params *PublicParameters, spec *ConstraintSpec, amount uint64, rng io.Reader) (*Bundle, error) {
	com, proof, err := CreateProofWithSpec(params, spec, amount, rng)
	if err != nil {
		return nil, err
	}
	return &Bundle{Commitment: com, Proof: proof}, nil
}

// Verify checks the value and fee proofs concurrently. The error names the
// part that failed.
func (e *Envelope) Verify(params *PublicParameters, spec *ConstraintSpec) error {
	if e.Value == nil || e.Fee == nil {
		return fmt.Errorf("Envelope Verify %w: missing bundle", ErrVerification)
	}
	var g errgroup.Group
	g.Go(func() error {
		if err := VerifyProofWithSpec(params, spec, e.Value.Commitment, e.Value.Proof); err != nil {
			return fmt.Errorf("Envelope Verify value %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := VerifyProofWithSpec(params, spec, e.Fee.Commitment, e.Fee.Proof); err != nil {
			return fmt.Errorf("Envelope Verify fee %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Hash commits to both bundles. The signature is not covered, a missing
// bundle hashes as empty.
func (e *Envelope) Hash() []byte {
	hash := blake2b.New256()
	hash.Write([]byte(ENVELOPE_HASH_DOMAIN_TAG))
	for _, b := range []*Bundle{e.Value, e.Fee} {
		if b == nil {
			b = &Bundle{}
		}
		writeBytes(hash, b.Commitment)
		writeBytes(hash, b.Proof)
	}
	return hash.Sum(nil)
}

func writeBytes(w io.Writer, data []byte) {
	var l [4]byte
	binary.LittleEndian.PutUint32(l[:], uint32(len(data)))
	w.Write(l[:])
	w.Write(data)
}

func (e *Envelope) Sign(sk *schnorrkel.SecretKey, pk *schnorrkel.PublicKey) error {
	if e.Value == nil || e.Fee == nil {
		return fmt.Errorf("Envelope Sign %w: missing bundle", ErrSignature)
	}
	transcript := schnorrkel.NewSigningContext([]byte(ENVELOPE_SIGNING_CONTEXT), e.Hash())
	sig, err := sk.Sign(transcript)
	if err != nil {
		return err
	}
	e.Signature = sig.Encode()
	e.Signer = pk.Encode()
	return nil
}

func (e *Envelope) VerifySignature() error {
	if e.Value == nil || e.Fee == nil {
		return fmt.Errorf("Envelope VerifySignature %w: missing bundle", ErrSignature)
	}
	transcript := schnorrkel.NewSigningContext([]byte(ENVELOPE_SIGNING_CONTEXT), e.Hash())
	public := schnorrkel.NewPublicKey(e.Signer)
	signature := schnorrkel.Signature{}
	if err := signature.Decode(e.Signature); err != nil {
		return fmt.Errorf("Envelope VerifySignature %w: %v", ErrSignature, err)
	}
	if !public.Verify(&signature, transcript) {
		return fmt.Errorf("Envelope VerifySignature %w", ErrSignature)
	}
	return nil
}

func (e *Envelope) MarshalBinary() ([]byte, error) {
	if e.Value == nil || e.Fee == nil {
		return nil, fmt.Errorf("Envelope MarshalBinary missing bundle")
	}
	var buf []byte
	for _, b := range []*Bundle{e.Value, e.Fee} {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b.Commitment)))
		buf = append(buf, b.Commitment...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(b.Proof)))
		buf = append(buf, b.Proof...)
	}
	buf = append(buf, e.Signer[:]...)
	buf = append(buf, e.Signature[:]...)
	return buf, nil
}

func (e *Envelope) UnmarshalBinary(data []byte) error {
	readBytes := func() ([]byte, error) {
		if len(data) < 4 {
			return nil, fmt.Errorf("Envelope UnmarshalBinary %w: short length", ErrDecode)
		}
		l := binary.LittleEndian.Uint32(data)
		data = data[4:]
		if uint64(len(data)) < uint64(l) {
			return nil, fmt.Errorf("Envelope UnmarshalBinary %w: short data %d, %d", ErrDecode, len(data), l)
		}
		out := append([]byte(nil), data[:l]...)
		data = data[l:]
		return out, nil
	}

	var bundles [2]*Bundle
	for i := range bundles {
		com, err := readBytes()
		if err != nil {
			return err
		}
		proof, err := readBytes()
		if err != nil {
			return err
		}
		bundles[i] = &Bundle{Commitment: com, Proof: proof}
	}
	if len(data) != 32+64 {
		return fmt.Errorf("Envelope UnmarshalBinary %w: trailing %d", ErrDecode, len(data))
	}
	e.Value, e.Fee = bundles[0], bundles[1]
	copy(e.Signer[:], data[:32])
	copy(e.Signature[:], data[32:])
	return nil
}
