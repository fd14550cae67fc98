package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	assert := assert.New(t)

	v, err := parseAmount("42", 0)
	assert.Nil(err)
	assert.Equal(uint64(42), v)

	v, err = parseAmount("0.01", 12)
	assert.Nil(err)
	assert.Equal(uint64(10_000_000_000), v)

	v, err = parseAmount(" 1.5 ", 1)
	assert.Nil(err)
	assert.Equal(uint64(15), v)

	_, err = parseAmount("1.5", 0)
	assert.NotNil(err)
	_, err = parseAmount("-1", 0)
	assert.NotNil(err)
	_, err = parseAmount("1", 20)
	assert.NotNil(err)
	_, err = parseAmount("18446744073709551616", 0)
	assert.NotNil(err)
}
