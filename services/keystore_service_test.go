package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstUseBootstrapsExactlyOneKey(t *testing.T) {
	ks := NewKeyStoreService()

	first, err := ks.CurrentSenderKey("u1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := ks.CurrentSenderKey("u1")
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, first, second)
}

func TestSenderAndReceiverNamespacesAreIndependent(t *testing.T) {
	ks := NewKeyStoreService()

	senderKey, _ := ks.CurrentSenderKey("u1")
	receiverKey, _ := ks.CurrentReceiverKey("u1")
	assert.NotEqual(t, senderKey, receiverKey)

	// rotating one role leaves the other untouched
	ks.RotateSenderKey("u1")
	unchanged, _ := ks.CurrentReceiverKey("u1")
	assert.Equal(t, receiverKey, unchanged)
}

func TestRotationAlwaysReturnsFreshKey(t *testing.T) {
	ks := NewKeyStoreService()

	previous, _ := ks.CurrentSenderKey("u1")
	for i := 0; i < 150; i++ {
		rotated, err := ks.RotateSenderKey("u1")
		if err != nil {
			t.Fatal(err)
		}
		assert.NotEqual(t, previous, rotated)
		current, _ := ks.CurrentSenderKey("u1")
		assert.Equal(t, rotated, current)
		previous = rotated
	}
}

func TestHasKeyOnlyAfterBootstrap(t *testing.T) {
	ks := NewKeyStoreService()

	assert.False(t, ks.HasSenderKey("u1"))
	assert.False(t, ks.HasReceiverKey("u1"))

	ks.CurrentSenderKey("u1")
	assert.True(t, ks.HasSenderKey("u1"))
	assert.False(t, ks.HasReceiverKey("u1"))
}

func TestConcurrentBootstrapAndRotation(t *testing.T) {
	ks := NewKeyStoreService()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			identity := fmt.Sprintf("u%d", n%5)
			if _, err := ks.CurrentSenderKey(identity); err != nil {
				t.Error(err)
			}
			if _, err := ks.RotateReceiverKey(identity); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	for n := 0; n < 5; n++ {
		identity := fmt.Sprintf("u%d", n)
		assert.True(t, ks.HasSenderKey(identity))
		assert.True(t, ks.HasReceiverKey(identity))
	}
}
