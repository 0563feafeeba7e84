package services

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/digitalbox/go-digitalbox-server/types"
)

func TestWrapProducesTextSafePayload(t *testing.T) {
	es := NewEncryptionService(NewKeyStoreService())

	payload, err := es.Wrap("u1", "staff1", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if _, dErr := base64.StdEncoding.DecodeString(payload); dErr != nil {
		t.Fatal("payload is not valid base64")
	}
}

func TestWrapRotatesKeys(t *testing.T) {
	ks := NewKeyStoreService()
	es := NewEncryptionService(ks)

	senderBefore, _ := ks.CurrentSenderKey("u1")
	receiverBefore, _ := ks.CurrentReceiverKey("staff1")

	if _, err := es.Wrap("u1", "staff1", "hello"); err != nil {
		t.Fatal(err)
	}

	senderAfter, _ := ks.CurrentSenderKey("u1")
	receiverAfter, _ := ks.CurrentReceiverKey("staff1")
	assert.NotEqual(t, senderBefore, senderAfter)
	assert.NotEqual(t, receiverBefore, receiverAfter)
}

// Wrap discards the keys it used, so an immediate Unwrap of the same payload
// must fail rather than recover the plaintext. This pins down the documented
// limitation of the rotation scheme.
func TestUnwrapAfterWrapFails(t *testing.T) {
	es := NewEncryptionService(NewKeyStoreService())

	payload, err := es.Wrap("u1", "staff1", "hello")
	if err != nil {
		t.Fatal(err)
	}

	plaintext, uErr := es.Unwrap("u1", "staff1", payload)
	assert.Error(t, uErr)
	assert.NotEqual(t, "hello", plaintext)
}

func TestUnwrapWithoutBootstrapReturnsNotFound(t *testing.T) {
	es := NewEncryptionService(NewKeyStoreService())

	_, err := es.Unwrap("never-seen", "also-never-seen", "aGVsbG8=")
	assert.Equal(t, types.ErrNotFound, err)
}

func TestWrapOutputDiffersPerCall(t *testing.T) {
	es := NewEncryptionService(NewKeyStoreService())

	first, err := es.Wrap("u1", "staff1", "same message")
	if err != nil {
		t.Fatal(err)
	}
	second, err := es.Wrap("u1", "staff1", "same message")
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEqual(t, first, second)
}
