package crypt

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/laguz/internal/apperr"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	env, err := Encrypt("# Secret\n\nsome content\n", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !IsEnvelope(env) {
		t.Fatalf("Encrypt output is not an envelope: %q", env)
	}
	if !strings.HasPrefix(env, "laguz:aes256gcm:") {
		t.Errorf("unexpected prefix: %q", env)
	}

	got, err := Decrypt(env, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Secret\n\nsome content\n" {
		t.Errorf("round trip = %q", got)
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	env, err := Encrypt("content", "correct")
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decrypt(env, "wrong")
	if !errors.Is(err, apperr.ErrDecryptionFailed) {
		t.Errorf("err = %v, want ErrDecryptionFailed", err)
	}
}

func TestDecryptMalformedEnvelope(t *testing.T) {
	for _, env := range []string{
		"plain markdown body",
		"laguz:aes256gcm:onlyonepart",
		"laguz:aes256gcm:!!!:!!!",
		"laguz:aes256gcm:QQ:QQ",
	} {
		if _, err := Decrypt(env, "pw"); !errors.Is(err, apperr.ErrDecryptionFailed) {
			t.Errorf("Decrypt(%q) err = %v, want ErrDecryptionFailed", env, err)
		}
	}
}

func TestEncryptEmptyPassword(t *testing.T) {
	env, err := Encrypt("body", "")
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decrypt(env, "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "body" {
		t.Errorf("got %q", got)
	}
}

func TestEncryptFreshSaltPerCall(t *testing.T) {
	a, err := Encrypt("same", "pw")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt("same", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two encryptions of the same input produced identical envelopes")
	}
}

func TestIsEnvelope(t *testing.T) {
	if IsEnvelope("# Heading\n") {
		t.Error("plain markdown classified as envelope")
	}
	if !IsEnvelope("  laguz:aes256gcm:abc:def") {
		t.Error("leading whitespace should not defeat detection")
	}
}
