package utils

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptRoundTrip(t *testing.T) {
	key := sha256.Sum256([]byte("secret"))

	encoded, err := Encrypt(key[:], []byte(`{"card":"4532015112830366"}`))
	require.NoError(t, err)
	assert.NotContains(t, encoded, "4532015112830366")

	plaintext, err := Decrypt(key[:], encoded)
	require.NoError(t, err)
	assert.Equal(t, `{"card":"4532015112830366"}`, string(plaintext))
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	key := sha256.Sum256([]byte("secret"))
	other := sha256.Sum256([]byte("other"))

	encoded, err := Encrypt(key[:], []byte("payload"))
	require.NoError(t, err)

	_, err = Decrypt(other[:], encoded)
	assert.ErrorIs(t, err, ErrDecrypt)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	key := sha256.Sum256([]byte("secret"))

	_, err := Decrypt(key[:], "not base64!!!")
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = Decrypt(key[:], "aGVsbG8=")
	assert.ErrorIs(t, err, ErrDecrypt)
}
