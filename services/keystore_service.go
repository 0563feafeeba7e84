package services

import (
	"sync"

	"github.com/digitalbox/go-digitalbox-server/util"
)

// KeyStoreService holds the current symmetric key per party identity.
// Sender and receiver keys are independent namespaces: the same identity can
// hold a different key in each role at the same time. Keys are created lazily
// on first use and replaced on rotation; rotated-out keys are not retained.
//
// A single instance is created at startup and injected wherever keys are
// needed. All access is serialized through the internal mutex.
type KeyStoreService struct {
	mu           sync.Mutex
	senderKeys   map[string]string
	receiverKeys map[string]string
}

func NewKeyStoreService() *KeyStoreService {
	return &KeyStoreService{
		senderKeys:   make(map[string]string),
		receiverKeys: make(map[string]string),
	}
}

// CurrentSenderKey returns the identity's current sender key, generating and
// storing a fresh one on first use.
func (ks *KeyStoreService) CurrentSenderKey(identity string) (string, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return currentKey(ks.senderKeys, identity)
}

// CurrentReceiverKey is the receiver-namespace counterpart of CurrentSenderKey.
func (ks *KeyStoreService) CurrentReceiverKey(identity string) (string, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return currentKey(ks.receiverKeys, identity)
}

// RotateSenderKey replaces the identity's sender key with a fresh one and
// returns it. The previous key is gone once this returns; callers that still
// need it must have captured it beforehand.
func (ks *KeyStoreService) RotateSenderKey(identity string) (string, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return rotateKey(ks.senderKeys, identity)
}

// RotateReceiverKey is the receiver-namespace counterpart of RotateSenderKey.
func (ks *KeyStoreService) RotateReceiverKey(identity string) (string, error) {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	return rotateKey(ks.receiverKeys, identity)
}

// HasSenderKey reports whether the identity was ever bootstrapped as a sender
func (ks *KeyStoreService) HasSenderKey(identity string) bool {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	_, ok := ks.senderKeys[identity]
	return ok
}

// HasReceiverKey reports whether the identity was ever bootstrapped as a receiver
func (ks *KeyStoreService) HasReceiverKey(identity string) bool {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	_, ok := ks.receiverKeys[identity]
	return ok
}

func currentKey(keys map[string]string, identity string) (string, error) {
	if key, ok := keys[identity]; ok {
		return key, nil
	}
	return rotateKey(keys, identity)
}

func rotateKey(keys map[string]string, identity string) (string, error) {
	key, err := util.GenerateSymmetricKey()
	if err != nil {
		return "", err
	}
	keys[identity] = key
	return key, nil
}
