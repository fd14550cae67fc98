package main

import (
	"fmt"

	api "github.com/JvSaberhagen/encryption-temporary-for-transaction"
)

// publicParameters selects the generator set both sides of a run agree on.
func publicParameters(gens string) (*api.PublicParameters, error) {
	switch gens {
	case "default":
		return api.DefaultPublicParameters(), nil
	case "hashed":
		return api.NewPublicParameters(api.NewPedersenGens(), api.GENS_CAPACITY, api.PARTY_CAPACITY), nil
	}
	return nil, fmt.Errorf("publicParameters unknown generators %s", gens)
}
