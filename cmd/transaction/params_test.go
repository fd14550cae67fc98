package main

import (
	"testing"

	api "github.com/JvSaberhagen/encryption-temporary-for-transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicParameters(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	def, err := publicParameters("default")
	require.Nil(err)
	assert.Same(api.DefaultPublicParameters(), def)

	hashed, err := publicParameters("hashed")
	require.Nil(err)
	assert.NotEqual(def.Fingerprint(), hashed.Fingerprint())

	_, err = publicParameters("bn254")
	assert.NotNil(err)
}
