// Package crypt implements the symmetric envelope protecting note bodies.
//
// An encrypted body is a single self-describing string:
//
//	laguz:aes256gcm:<base64 salt>:<base64 nonce+ciphertext>
//
// The key is derived from the password with scrypt, and the plaintext is the
// JSON document {"markdown": "..."} so that a wrong password fails either
// the AEAD open or the JSON parse, never silently.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/starford/laguz/internal/apperr"
)

const (
	envelopePrefix = "laguz:aes256gcm:"

	saltLength = 16
	keyLength  = 32

	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

type payload struct {
	Markdown string `json:"markdown"`
}

// IsEnvelope reports whether s looks like an encrypted envelope. A plain
// Markdown body never matches, which keeps "not encrypted" distinguishable
// from "wrong password".
func IsEnvelope(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), envelopePrefix)
}

// Encrypt seals markdown under password. The empty password is legal; the
// envelope still round-trips, it is just not secret.
func Encrypt(markdown, password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("crypt: generate salt: %w", err)
	}
	aead, err := newAEAD(password, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypt: generate nonce: %w", err)
	}

	plain, err := json.Marshal(payload{Markdown: markdown})
	if err != nil {
		return "", fmt.Errorf("crypt: marshal payload: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)

	return envelopePrefix +
		base64.RawStdEncoding.EncodeToString(salt) + ":" +
		base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt. A wrong password or a
// corrupted envelope yields apperr.ErrDecryptionFailed.
func Decrypt(envelope, password string) (string, error) {
	trimmed := strings.TrimSpace(envelope)
	if !strings.HasPrefix(trimmed, envelopePrefix) {
		return "", fmt.Errorf("crypt: not an envelope: %w", apperr.ErrDecryptionFailed)
	}
	parts := strings.Split(strings.TrimPrefix(trimmed, envelopePrefix), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("crypt: malformed envelope: %w", apperr.ErrDecryptionFailed)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("crypt: decode salt: %w", apperr.ErrDecryptionFailed)
	}
	sealed, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("crypt: decode ciphertext: %w", apperr.ErrDecryptionFailed)
	}

	aead, err := newAEAD(password, salt)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", fmt.Errorf("crypt: envelope too short: %w", apperr.ErrDecryptionFailed)
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("crypt: open: %w", apperr.ErrDecryptionFailed)
	}

	var p payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return "", fmt.Errorf("crypt: parse payload: %w", apperr.ErrDecryptionFailed)
	}
	return p.Markdown, nil
}

func newAEAD(password string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("crypt: derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new gcm: %w", err)
	}
	return aead, nil
}
