package services

import (
	"encoding/base64"
	"sync"

	"github.com/digitalbox/go-digitalbox-server/types"
	"github.com/digitalbox/go-digitalbox-server/util"
)

// EncryptionService produces the double-wrapped message payloads stored in the
// complaint archive: plaintext is encrypted under the sender's current key,
// the result under the receiver's current key, and the outcome base64 encoded.
//
// After every Wrap both keys are rotated unconditionally, so each payload is
// sealed under a one-time key pair that is discarded immediately. Unwrap only
// ever sees the post-rotation keys and therefore fails for any payload wrapped
// earlier. This mirrors the upstream scheme as-is; it is a known limitation of
// the simplified rotation model, not something callers can work around.
type EncryptionService struct {
	keyStore *KeyStoreService
	// serializes fetch-encrypt-rotate so two wraps for the same identity
	// never observe an inconsistent key value
	mu sync.Mutex
}

func NewEncryptionService(keyStore *KeyStoreService) *EncryptionService {
	return &EncryptionService{
		keyStore: keyStore,
	}
}

// Wrap seals plaintext for the (sender, receiver) pair and rotates both keys.
func (es *EncryptionService) Wrap(senderID, receiverID, plaintext string) (string, error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	senderKey, sErr := es.keyStore.CurrentSenderKey(senderID)
	if sErr != nil {
		return "", sErr
	}
	receiverKey, rErr := es.keyStore.CurrentReceiverKey(receiverID)
	if rErr != nil {
		return "", rErr
	}

	inner, iErr := util.SymmetricEncrypt([]byte(plaintext), senderKey)
	if iErr != nil {
		return "", iErr
	}
	outer, oErr := util.SymmetricEncrypt([]byte(inner), receiverKey)
	if oErr != nil {
		return "", oErr
	}

	if _, err := es.keyStore.RotateSenderKey(senderID); err != nil {
		return "", err
	}
	if _, err := es.keyStore.RotateReceiverKey(receiverID); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString([]byte(outer)), nil
}

// Unwrap attempts to open a payload with the pair's current keys. It returns
// ErrNotFound when either identity has never been bootstrapped; for payloads
// produced by an earlier Wrap it fails on decryption because those keys were
// rotated away (see the type comment).
func (es *EncryptionService) Unwrap(senderID, receiverID, payload string) (string, error) {
	es.mu.Lock()
	defer es.mu.Unlock()

	if !es.keyStore.HasSenderKey(senderID) || !es.keyStore.HasReceiverKey(receiverID) {
		return "", types.ErrNotFound
	}
	senderKey, sErr := es.keyStore.CurrentSenderKey(senderID)
	if sErr != nil {
		return "", sErr
	}
	receiverKey, rErr := es.keyStore.CurrentReceiverKey(receiverID)
	if rErr != nil {
		return "", rErr
	}

	outer, dErr := base64.StdEncoding.DecodeString(payload)
	if dErr != nil {
		return "", types.ErrBadRequest
	}
	inner, oErr := util.SymmetricDecrypt(string(outer), receiverKey)
	if oErr != nil {
		return "", oErr
	}
	plaintext, iErr := util.SymmetricDecrypt(string(inner), senderKey)
	if iErr != nil {
		return "", iErr
	}
	return string(plaintext), nil
}
