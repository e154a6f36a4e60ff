package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeOffsetToken(t *testing.T) {
	token := EncodeOffsetToken(150)
	assert.NotNil(t, token, "Token should not be nil")
	assert.NotEmpty(t, *token, "Token should not be empty")

	offset, err := DecodeOffsetToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, 150, offset, "Offset should match after decode")

	zeroToken := EncodeOffsetToken(0)
	zeroOffset, err := DecodeOffsetToken(zeroToken)
	assert.NoError(t, err, "Decoding zero offset should not return an error")
	assert.Equal(t, 0, zeroOffset, "Zero offset should match after decode")
}

func TestDecodeOffsetToken_NilMeansStart(t *testing.T) {
	offset, err := DecodeOffsetToken(nil)
	assert.NoError(t, err, "Nil token should not return an error")
	assert.Equal(t, 0, offset, "Nil token should decode to offset 0")
}

func TestDecodeOffsetTokenError(t *testing.T) {
	bad := "this is not base64!"
	_, err := DecodeOffsetToken(&bad)
	assert.Error(t, err, "Should return an error for invalid base64")

	// Valid base64 but not a number.
	notANumber := "bm90YW51bWJlcg==" // "notanumber"
	_, err = DecodeOffsetToken(&notANumber)
	assert.Error(t, err, "Should return an error for a non-numeric token")

	// Negative offsets are rejected rather than clamped.
	negative := "LTU=" // "-5"
	_, err = DecodeOffsetToken(&negative)
	assert.Error(t, err, "Should return an error for a negative offset")
}
