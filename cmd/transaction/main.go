package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"os"

	"github.com/ChainSafe/go-schnorrkel"
	api "github.com/JvSaberhagen/encryption-temporary-for-transaction"
	"github.com/rs/zerolog"
)

func main() {
	valueFlag := flag.String("value", "42", "transaction value")
	feeFlag := flag.String("fee", "1", "transaction fee")
	precision := flag.Int("precision", 0, "decimal places of the amounts")
	target := flag.Uint64("target", api.DEFAULT_CONSTRAINT_TARGET, "value every amount is proven equal to")
	domain := flag.String("domain", api.DEFAULT_CONSTRAINT_DOMAIN, "transcript domain label")
	gens := flag.String("gens", "default", "pedersen generators, default or hashed")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	value, err := parseAmount(*valueFlag, *precision)
	if err != nil {
		log.Fatal().Err(err).Msg("value")
	}
	fee, err := parseAmount(*feeFlag, *precision)
	if err != nil {
		log.Fatal().Err(err).Msg("fee")
	}

	params, err := publicParameters(*gens)
	if err != nil {
		log.Fatal().Err(err).Msg("gens")
	}
	spec := api.EqualityConstraint(*domain, *target)

	valueBundle, validValue := proveAndVerify(log, "value", params, spec, value)
	feeBundle, validFee := proveAndVerify(log, "fee", params, spec, fee)

	if !validValue || !validFee {
		log.Error().Msg("Transaction verification failed.")
		os.Exit(1)
	}

	envelope := &api.Envelope{Value: valueBundle, Fee: feeBundle}
	if err := envelope.Verify(params, spec); err != nil {
		log.Fatal().Err(err).Msg("Transaction verification failed.")
	}

	sk, pk, err := schnorrkel.GenerateKeypair()
	if err != nil {
		log.Fatal().Err(err).Msg("GenerateKeypair")
	}
	if err := envelope.Sign(sk, pk); err != nil {
		log.Fatal().Err(err).Msg("Sign")
	}
	if err := envelope.VerifySignature(); err != nil {
		log.Fatal().Err(err).Msg("VerifySignature")
	}
	data, err := envelope.MarshalBinary()
	if err != nil {
		log.Fatal().Err(err).Msg("MarshalBinary")
	}

	log.Info().
		Str("hash", hex.EncodeToString(envelope.Hash())).
		Int("size", len(data)).
		Msg("Transaction propagated and mined successfully.")
}

// proveAndVerify builds the proof for one amount and checks it the way a
// receiving node would. An amount the prover refuses counts as invalid.
func proveAndVerify(log zerolog.Logger, part string, params *api.PublicParameters, spec *api.ConstraintSpec, amount uint64) (*api.Bundle, bool) {
	com, proof, err := api.CreateProofWithSpec(params, spec, amount, rand.Reader)
	if errors.Is(err, api.ErrUnsatisfiedConstraint) {
		log.Info().Str("part", part).Bool("valid", false).Msg("Bulletproof for transaction " + part)
		return nil, false
	}
	if err != nil {
		log.Fatal().Err(err).Str("part", part).Msg("CreateProof")
	}

	valid := api.VerifyProofWithSpec(params, spec, com, proof) == nil
	log.Info().
		Str("part", part).
		Bool("valid", valid).
		Str("commitment", hex.EncodeToString(com)).
		Int("proof", len(proof)).
		Msg("Bulletproof for transaction " + part)
	return &api.Bundle{Commitment: com, Proof: proof}, valid
}
