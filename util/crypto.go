package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const symmetricKeySize = 32 // AES-256

// GenerateSymmetricKey returns a fresh random key as a url-safe base64 string.
// Keys are opaque tokens to callers; only this package decodes them.
func GenerateSymmetricKey() (string, error) {
	key := make([]byte, symmetricKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(key), nil
}

// SymmetricEncrypt seals plaintext under the given key with AES-GCM and a
// random nonce. The result is a url-safe base64 token of nonce||ciphertext.
func SymmetricEncrypt(plaintext []byte, key string) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// SymmetricDecrypt reverses SymmetricEncrypt. Fails if the token was not
// produced under the same key.
func SymmetricDecrypt(token string, key string) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	sealed, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token encoding: %w", err)
	}
	if len(sealed) < aesgcm.NonceSize() {
		return nil, fmt.Errorf("token too short")
	}
	nonce, ciphertext := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key string) (cipher.AEAD, error) {
	keyBytes, err := base64.URLEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("invalid key encoding: %w", err)
	}
	if len(keyBytes) != symmetricKeySize {
		return nil, fmt.Errorf("invalid key length %d", len(keyBytes))
	}
	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
