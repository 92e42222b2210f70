package utils

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken(t *testing.T) {
	token, err := NewSessionToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err)
}

func TestNewSessionTokenDefaultsSize(t *testing.T) {
	token, err := NewSessionToken(0)
	require.NoError(t, err)
	assert.Len(t, token, 64)
}

func TestNewSessionTokenUnique(t *testing.T) {
	a, err := NewSessionToken(32)
	require.NoError(t, err)
	b, err := NewSessionToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
