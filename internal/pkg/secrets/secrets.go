// Package secrets seals small strings that must be recoverable later, such
// as broker passwords handed to the trading bot. Hashing is not an option
// for these; AES-GCM with a server-side key is.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"github.com/jaguarlabs/jaguar/internal/pkg/env"
)

// ErrNoKey is returned when no sealing key is configured.
var ErrNoKey = errors.New("secrets: no sealing key configured (set BOT_CREDENTIAL_KEY or APP_SECRET)")

func sealingKey() ([]byte, error) {
	raw := strings.TrimSpace(env.GetFirst("", "BOT_CREDENTIAL_KEY", "APP_SECRET"))
	if raw == "" {
		return nil, ErrNoKey
	}
	// Derive a fixed-size key so operators can use any passphrase.
	sum := sha256.Sum256([]byte(raw))
	return sum[:], nil
}

// Seal encrypts plaintext with AES-GCM and returns a base64 token carrying
// the nonce.
func Seal(plaintext string) (string, error) {
	key, err := sealingKey()
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token produced by Seal.
func Open(token string) (string, error) {
	key, err := sealingKey()
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", errors.New("secrets: token too short")
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
