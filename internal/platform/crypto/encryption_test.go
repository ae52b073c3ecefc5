package crypto

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptRoundTrip(t *testing.T) {
	svc, err := New(hex.EncodeToString([]byte(strings.Repeat("x", 32))))
	require.NoError(t, err)
	require.True(t, svc.Configured())

	sealed, err := svc.Encrypt([]byte("payslip"))
	require.NoError(t, err)
	assert.NotEqual(t, []byte("payslip"), sealed)

	plain, err := svc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "payslip", string(plain))

	_, err = svc.Decrypt([]byte("short"))
	assert.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestEmptyKeyPassesThrough(t *testing.T) {
	svc, err := New("")
	require.NoError(t, err)
	assert.False(t, svc.Configured())

	out, err := svc.Encrypt([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(out))
}

func TestRejectsWrongKeySize(t *testing.T) {
	_, err := New("too-short")
	assert.Error(t, err)
}
