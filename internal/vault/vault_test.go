package vault

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New("test-vault-secret")
	require.NoError(t, err)
	return v
}

func TestVaultRoundTrip(t *testing.T) {
	v := newTestVault(t)

	secrets := []string{
		"a",
		"hunter2",
		"exactly-sixteen!",                 // one full block
		"a-much-longer-password-with-다국어", // multi-byte
		strings.Repeat("x", 100),
	}
	for _, secret := range secrets {
		record, err := v.Encrypt(secret)
		require.NoError(t, err, "encrypting %q", secret)

		parts := strings.Split(record, ":")
		require.Len(t, parts, 2)
		iv, err := hex.DecodeString(parts[0])
		require.NoError(t, err)
		assert.Len(t, iv, 16)

		got, err := v.Decrypt(record)
		require.NoError(t, err)
		assert.Equal(t, secret, got)
	}
}

func TestVaultEncryptRejectsEmptySecret(t *testing.T) {
	v := newTestVault(t)
	_, err := v.Encrypt("")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestVaultFreshIVPerCall(t *testing.T) {
	v := newTestVault(t)
	r1, err := v.Encrypt("same-secret")
	require.NoError(t, err)
	r2, err := v.Encrypt("same-secret")
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2)
}

func TestVaultDecryptFailsClosed(t *testing.T) {
	v := newTestVault(t)
	record, err := v.Encrypt("hunter2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		record string
	}{
		{"no delimiter", strings.ReplaceAll(record, ":", "")},
		{"too many parts", record + ":deadbeef"},
		{"non-hex iv", "zz" + record[2:]},
		{"truncated ciphertext", record[:len(record)-4]},
		{"empty record", ""},
		{"plain garbage", "not-a-record"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Decrypt(tc.record)
			assert.ErrorIs(t, err, apperrors.ErrDecryptionFailure)
			assert.Empty(t, got)
		})
	}
}

func TestVaultDecryptTamperedCiphertext(t *testing.T) {
	v := newTestVault(t)
	record, err := v.Encrypt("hunter2")
	require.NoError(t, err)

	// Flip one ciphertext nibble. CBC decryption then either corrupts the
	// padding (error) or, at worst, yields different plaintext; it must
	// never return the original secret.
	tampered := []byte(record)
	last := tampered[len(tampered)-1]
	if last == 'a' {
		tampered[len(tampered)-1] = 'b'
	} else {
		tampered[len(tampered)-1] = 'a'
	}

	got, err := v.Decrypt(string(tampered))
	if err == nil {
		assert.NotEqual(t, "hunter2", got)
	} else {
		assert.ErrorIs(t, err, apperrors.ErrDecryptionFailure)
	}
}

func TestVaultWrongKey(t *testing.T) {
	v1 := newTestVault(t)
	v2, err := New("a-completely-different-secret")
	require.NoError(t, err)

	record, err := v1.Encrypt("hunter2")
	require.NoError(t, err)

	got, err := v2.Decrypt(record)
	if err == nil {
		assert.NotEqual(t, "hunter2", got)
	} else {
		assert.Empty(t, got)
	}
}

func TestVaultKeyPaddingAndTruncation(t *testing.T) {
	// Short secrets pad with '0'; overlong secrets truncate to 32 bytes.
	short, err := New("short")
	require.NoError(t, err)
	padded, err := New("short" + strings.Repeat("0", 27))
	require.NoError(t, err)

	record, err := short.Encrypt("hunter2")
	require.NoError(t, err)
	got, err := padded.Decrypt(record)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	long1, err := New(strings.Repeat("k", 32) + "extra")
	require.NoError(t, err)
	long2, err := New(strings.Repeat("k", 32) + "different-tail")
	require.NoError(t, err)
	record, err = long1.Encrypt("hunter2")
	require.NoError(t, err)
	got, err = long2.Decrypt(record)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)

	_, err = New("")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
