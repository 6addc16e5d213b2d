package services

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minventory/internal/common"
	"minventory/internal/cryptox"
)

func TestOpenFieldLegacyBase64Fallback(t *testing.T) {
	key := common.GenerateRandByteArray(cryptox.KeySize)

	sealed, err := cryptox.Seal([]byte("hello"), key)
	require.NoError(t, err)

	// a row migrated from a text column stores the sealed bytes base64-encoded
	legacy := []byte(base64.StdEncoding.EncodeToString(sealed))

	got, err := openField(legacy, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)
}

func TestOpenFieldFailurePropagates(t *testing.T) {
	key := common.GenerateRandByteArray(cryptox.KeySize)

	_, err := openField([]byte("neither sealed nor base64!"), key)
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)

	// valid base64 that decodes to garbage still fails after the one retry
	garbage := []byte(base64.StdEncoding.EncodeToString(make([]byte, 64)))
	_, err = openField(garbage, key)
	assert.ErrorIs(t, err, common.ErrDecryptionFailed)
}

func TestOpenStringOrSentinel(t *testing.T) {
	key := common.GenerateRandByteArray(cryptox.KeySize)

	sealed, err := cryptox.Seal([]byte("fine"), key)
	require.NoError(t, err)

	assert.Equal(t, "fine", openStringOrSentinel(sealed, key))
	assert.Equal(t, DecryptionFailedSentinel, openStringOrSentinel([]byte("junk"), key))

	wrongKey := common.GenerateRandByteArray(cryptox.KeySize)
	assert.Equal(t, DecryptionFailedSentinel, openStringOrSentinel(sealed, wrongKey))
}
