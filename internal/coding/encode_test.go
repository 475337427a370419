package coding

import (
	"testing"

	"github.com/google/uuid"
)

func TestBase64RoundTrip(t *testing.T) {
	enc := Base64Encode("héllo")
	if enc != "aMOpbGxv" {
		t.Errorf("encode: %s", enc)
	}
	dec, err := Base64Decode(" aMOp\nbGxv ")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec != "héllo" {
		t.Errorf("decode: %q", dec)
	}
}

func TestBase64Decode_MissingPadding(t *testing.T) {
	got, err := Base64Decode("aGk")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != "hi" {
		t.Errorf("got %q", got)
	}
}

func TestBase64Decode_Invalid(t *testing.T) {
	if out, err := Base64Decode("!!!"); err == nil {
		t.Errorf("want error, got %q", out)
	}
}

func TestBase64Decode_InvalidUTF8Replaced(t *testing.T) {
	got, err := Base64Decode("/w==")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != "\uFFFD" {
		t.Errorf("got %q", got)
	}
}

func TestHash(t *testing.T) {
	tests := map[string]string{
		"sha256": "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		"sha1":   "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
		"MD5":    "5d41402abc4b2a76b9719d911017c592",
	}
	for alg, want := range tests {
		got, err := Hash(alg, "hello")
		if err != nil {
			t.Fatalf("Hash(%s): %v", alg, err)
		}
		if got != want {
			t.Errorf("Hash(%s) = %s, want %s", alg, got, want)
		}
	}

	if _, err := Hash("crc32", "hello"); err == nil {
		t.Error("want error for unsupported algorithm")
	}
}

func TestNewUUID(t *testing.T) {
	a, b := NewUUID(), NewUUID()
	if a == b {
		t.Error("UUIDs should differ")
	}
	u, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("not a UUID: %v", err)
	}
	if u.Version() != 4 {
		t.Errorf("want version 4, got %d", u.Version())
	}
}
