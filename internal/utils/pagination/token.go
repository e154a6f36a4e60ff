// Package pagination encodes list-cursor tokens. Tokens are opaque to
// callers; the encoding is an implementation detail shared by all
// repository backends so a token from one backend works against another.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// EncodeOffsetToken creates a token resuming a listing at the given offset.
func EncodeOffsetToken(offset int) *string {
	token := base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
	return &token
}

// DecodeOffsetToken parses a token back into an offset. A nil token means
// start from the beginning.
func DecodeOffsetToken(token *string) (int, error) {
	if token == nil {
		return 0, nil
	}
	decodedBytes, err := base64.StdEncoding.DecodeString(*token)
	if err != nil {
		return 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	offset, err := strconv.Atoi(string(decodedBytes))
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid pagination token format (offset parse)")
	}
	return offset, nil
}
