package coding

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/google/uuid"
)

// HashAlgorithms lists the supported digests in menu order.
var HashAlgorithms = []string{"sha256", "sha1", "md5"}

// Base64Encode encodes the UTF-8 bytes of s.
func Base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Base64Decode decodes s, ignoring whitespace and tolerating missing padding.
// Invalid UTF-8 in the result is replaced with U+FFFD.
func Base64Decode(s string) (string, error) {
	clean := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, s)

	data, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "="))
		if rawErr != nil {
			return "", fmt.Errorf("base64 error: %w", err)
		}
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// Hash returns the hex digest of s using alg (sha256, sha1 or md5).
func Hash(alg, s string) (string, error) {
	var h hash.Hash
	switch strings.ToLower(alg) {
	case "sha256":
		h = sha256.New()
	case "sha1":
		h = sha1.New()
	case "md5":
		h = md5.New()
	default:
		return "", fmt.Errorf("unsupported hash algorithm %q", alg)
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NewUUID returns a random (version 4) UUID.
func NewUUID() string {
	return uuid.NewString()
}
