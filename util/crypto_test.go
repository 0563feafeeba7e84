package util

import (
	"encoding/base64"
	"testing"

	"github.com/tj/assert"
)

func TestGenerateSymmetricKey(t *testing.T) {
	key, err := GenerateSymmetricKey()
	if err != nil {
		t.Fatal(err)
	}
	keyBytes, dErr := base64.URLEncoding.DecodeString(key)
	if dErr != nil {
		t.Fatal(dErr)
	}
	if len(keyBytes) != 32 {
		t.Fatal("key is not 32 bytes long")
	}

	other, err := GenerateSymmetricKey()
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEqual(t, key, other)
}

func TestSymmetricRoundTrip(t *testing.T) {
	key, err := GenerateSymmetricKey()
	if err != nil {
		t.Fatal(err)
	}
	token, err := SymmetricEncrypt([]byte("my complaint is confidential"), key)
	if err != nil {
		t.Fatal(err)
	}
	// token must be text safe
	if _, dErr := base64.URLEncoding.DecodeString(token); dErr != nil {
		t.Fatal("token is not valid base64")
	}
	plaintext, err := SymmetricDecrypt(token, key)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "my complaint is confidential", string(plaintext))
}

func TestSymmetricDecryptWrongKey(t *testing.T) {
	key, _ := GenerateSymmetricKey()
	wrongKey, _ := GenerateSymmetricKey()

	token, err := SymmetricEncrypt([]byte("hello"), key)
	if err != nil {
		t.Fatal(err)
	}
	_, dErr := SymmetricDecrypt(token, wrongKey)
	assert.Error(t, dErr)
}

func TestSymmetricDecryptGarbage(t *testing.T) {
	key, _ := GenerateSymmetricKey()
	_, err := SymmetricDecrypt("not-a-token", key)
	assert.Error(t, err)
}
