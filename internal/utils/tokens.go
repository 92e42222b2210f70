package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewSessionToken — opaque bearer-токен. nBytes случайных байт в hex
// (32 байта = 256 бит по умолчанию).
func NewSessionToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
