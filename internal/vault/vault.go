// Package vault encrypts portal login secrets at rest. Records are
// AES-256-CBC with a random IV per call, serialized as
// "hex(iv):hex(ciphertext)" so a credential row is one opaque string.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/haneulsoft/kinderledger/internal/apperrors"
)

const (
	keyLength = 32 // aes-256
	ivLength  = aes.BlockSize
)

// Vault performs symmetric encryption of credential secrets with a
// process-wide key fixed at startup.
type Vault struct {
	key []byte
}

// New derives the vault key from the deployment secret by padding with '0'
// or truncating to 32 bytes. This is intentionally not a KDF: the record
// format is shared with credentials encrypted by earlier deployments, and
// changing the derivation would orphan every stored ciphertext.
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: vault secret must not be empty", apperrors.ErrValidation)
	}
	key := []byte(secret)
	if len(key) < keyLength {
		key = append(key, []byte(strings.Repeat("0", keyLength-len(key)))...)
	}
	return &Vault{key: key[:keyLength]}, nil
}

// Encrypt encrypts a non-empty secret into a "hex(iv):hex(ct)" record.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		// An empty stored record must never round-trip to a valid (empty)
		// password, so refuse it at the door.
		return "", fmt.Errorf("%w: secret must not be empty", apperrors.ErrValidation)
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("creating cipher: %w", err)
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt recovers the secret from a vault record. It fails closed: any
// malformed record, wrong key or tampered ciphertext yields
// apperrors.ErrDecryptionFailure and an empty string, never partial
// plaintext.
func (v *Vault) Decrypt(record string) (string, error) {
	parts := strings.Split(record, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: malformed record", apperrors.ErrDecryptionFailure)
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivLength {
		return "", fmt.Errorf("%w: invalid iv", apperrors.ErrDecryptionFailure)
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: invalid ciphertext", apperrors.ErrDecryptionFailure)
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrDecryptionFailure, err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrDecryptionFailure, err)
	}
	if len(plaintext) == 0 {
		return "", fmt.Errorf("%w: empty plaintext", apperrors.ErrDecryptionFailure)
	}
	return string(plaintext), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, fmt.Errorf("invalid padding byte %d", padLen)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-padLen], nil
}
