package hub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/tj/assert"

	"github.com/digitalbox/go-digitalbox-server/types"
)

type memoryChatLog struct {
	mu        sync.Mutex
	messages  []*types.ChatMessage
	appendErr error
}

func (m *memoryChatLog) Append(ctx context.Context, message *types.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.messages = append(m.messages, message)
	return nil
}

func (m *memoryChatLog) ListByComplaint(ctx context.Context, complaintID string) ([]*types.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*types.ChatMessage{}
	for _, msg := range m.messages {
		if msg.ComplaintID == complaintID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type stubAttachmentStore struct {
	uploadErr error
	uploads   int
}

func (s *stubAttachmentStore) UploadAttachment(complaintID, messageID, filename string, content []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads++
	return fmt.Sprintf("https://bucket.s3.eu-central-1.amazonaws.com/attachments/%s/%s/%s", complaintID, messageID, filename), nil
}

type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (r *recordingEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func newTestClient(h *Hub) *Client {
	return &Client{hub: h, send: make(chan *Event, 32)}
}

func receiveEvent(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case event := <-c.send:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case event := <-c.send:
		t.Fatalf("unexpected event %s", event.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func sendEvent(t *testing.T, h *Hub, c *Client, eventType EventType, payload interface{}) {
	t.Helper()
	event, err := NewEvent(eventType, payload)
	assert.NoError(t, err)
	h.handleEvent(c, event)
}

func TestSendMessageBroadcastsToAllClients(t *testing.T) {
	log := &memoryChatLog{}
	h := NewHub(log, &stubAttachmentStore{}, nil)
	go h.Run()

	sender := newTestClient(h)
	observer := newTestClient(h)
	h.RegisterClient(sender)
	h.RegisterClient(observer)

	sendEvent(t, h, sender, EventSendMessage, types.SendMessageInput{
		ComplaintID: "1700000000_deadbeef",
		SenderID:    "user-1",
		Message:     "the replacement unit arrived broken as well",
	})

	// every connected client receives the envelope, the sender included
	for _, c := range []*Client{sender, observer} {
		event := receiveEvent(t, c)
		assert.Equal(t, EventReceiveMessage, event.Type)

		var message types.ChatMessage
		assert.NoError(t, json.Unmarshal(event.Payload, &message))
		assert.Equal(t, "1700000000_deadbeef", message.ComplaintID)
		assert.Equal(t, "user-1", message.SenderID)
		assert.NotEmpty(t, message.MessageID)
		assert.NotEmpty(t, message.Timestamp)
		assert.Empty(t, message.AttachmentURL)
	}

	assert.Equal(t, 1, len(log.messages))
}

func TestSendMessageWithAttachment(t *testing.T) {
	log := &memoryChatLog{}
	store := &stubAttachmentStore{}
	h := NewHub(log, store, nil)
	go h.Run()

	sender := newTestClient(h)
	h.RegisterClient(sender)

	sendEvent(t, h, sender, EventSendMessage, types.SendMessageInput{
		ComplaintID: "1700000000_deadbeef",
		SenderID:    "user-1",
		Message:     "photo of the damage",
		Attachment: &types.AttachmentInput{
			Name:  "damage.png",
			Bytes: base64.StdEncoding.EncodeToString([]byte("not really a png")),
		},
	})

	event := receiveEvent(t, sender)
	var message types.ChatMessage
	assert.NoError(t, json.Unmarshal(event.Payload, &message))
	assert.Contains(t, message.AttachmentURL, "attachments/1700000000_deadbeef/")
	assert.Contains(t, message.AttachmentURL, "damage.png")
	assert.Equal(t, 1, store.uploads)
	assert.Equal(t, message.AttachmentURL, log.messages[0].AttachmentURL)
}

func TestConcurrentSendsAllPersisted(t *testing.T) {
	log := &memoryChatLog{}
	h := NewHub(log, &stubAttachmentStore{}, nil)
	go h.Run()

	const senders = 20
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := newTestClient(h)
			sendEvent(t, h, c, EventSendMessage, types.SendMessageInput{
				ComplaintID: "1700000000_deadbeef",
				SenderID:    fmt.Sprintf("user-%d", i),
				Message:     fmt.Sprintf("message %d", i),
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, senders, len(log.messages))
	seen := map[string]bool{}
	for _, msg := range log.messages {
		assert.False(t, seen[msg.MessageID], "duplicate message id %s", msg.MessageID)
		seen[msg.MessageID] = true
	}
}

func TestRequestMessagesReplaysToRequesterOnly(t *testing.T) {
	log := &memoryChatLog{}
	for i := 0; i < 3; i++ {
		log.messages = append(log.messages, &types.ChatMessage{
			ComplaintID: "1700000000_deadbeef",
			MessageID:   fmt.Sprintf("msg-%d", i),
			SenderID:    "user-1",
			Message:     fmt.Sprintf("message %d", i),
			Timestamp:   time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
	log.messages = append(log.messages, &types.ChatMessage{
		ComplaintID: "1700000001_cafebabe",
		MessageID:   "other",
		SenderID:    "user-2",
		Message:     "unrelated complaint",
	})

	h := NewHub(log, &stubAttachmentStore{}, nil)
	go h.Run()

	requester := newTestClient(h)
	bystander := newTestClient(h)
	h.RegisterClient(requester)
	h.RegisterClient(bystander)

	sendEvent(t, h, requester, EventRequestMessages, "1700000000_deadbeef")

	// history arrives in store order, one envelope per message
	for i := 0; i < 3; i++ {
		event := receiveEvent(t, requester)
		assert.Equal(t, EventReceiveMessage, event.Type)
		var message types.ChatMessage
		assert.NoError(t, json.Unmarshal(event.Payload, &message))
		assert.Equal(t, fmt.Sprintf("msg-%d", i), message.MessageID)
	}
	assertNoEvent(t, requester)
	assertNoEvent(t, bystander)
}

func TestRequestMessagesUnknownComplaint(t *testing.T) {
	h := NewHub(&memoryChatLog{}, &stubAttachmentStore{}, nil)

	requester := newTestClient(h)
	sendEvent(t, h, requester, EventRequestMessages, "1700009999_00000000")

	// an unknown complaint is an empty history, not an error
	assertNoEvent(t, requester)
}

func TestMalformedSendMessage(t *testing.T) {
	log := &memoryChatLog{}
	h := NewHub(log, &stubAttachmentStore{}, nil)
	go h.Run()

	sender := newTestClient(h)
	observer := newTestClient(h)
	h.RegisterClient(sender)
	h.RegisterClient(observer)

	h.handleEvent(sender, &Event{Type: EventSendMessage, Payload: json.RawMessage(`"not an object"`)})

	event := receiveEvent(t, sender)
	assert.Equal(t, EventError, event.Type)
	var errPayload ErrorPayload
	assert.NoError(t, json.Unmarshal(event.Payload, &errPayload))
	assert.Equal(t, ErrorCodeBadRequest, errPayload.Code)

	assertNoEvent(t, observer)
	assert.Equal(t, 0, len(log.messages))
}

func TestSendMessageMissingFields(t *testing.T) {
	h := NewHub(&memoryChatLog{}, &stubAttachmentStore{}, nil)

	sender := newTestClient(h)
	sendEvent(t, h, sender, EventSendMessage, types.SendMessageInput{
		ComplaintID: "1700000000_deadbeef",
	})

	event := receiveEvent(t, sender)
	assert.Equal(t, EventError, event.Type)
	var errPayload ErrorPayload
	assert.NoError(t, json.Unmarshal(event.Payload, &errPayload))
	assert.Equal(t, ErrorCodeBadRequest, errPayload.Code)
}

func TestAttachmentUploadFailureAbortsSend(t *testing.T) {
	log := &memoryChatLog{}
	store := &stubAttachmentStore{uploadErr: types.ErrStorageUnavailable}
	h := NewHub(log, store, nil)
	go h.Run()

	sender := newTestClient(h)
	observer := newTestClient(h)
	h.RegisterClient(sender)
	h.RegisterClient(observer)

	sendEvent(t, h, sender, EventSendMessage, types.SendMessageInput{
		ComplaintID: "1700000000_deadbeef",
		SenderID:    "user-1",
		Message:     "with attachment",
		Attachment: &types.AttachmentInput{
			Name:  "receipt.pdf",
			Bytes: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
		},
	})

	event := receiveEvent(t, sender)
	assert.Equal(t, EventError, event.Type)
	var errPayload ErrorPayload
	assert.NoError(t, json.Unmarshal(event.Payload, &errPayload))
	assert.Equal(t, ErrorCodeStorageUnavailable, errPayload.Code)

	// nothing persisted, nothing broadcast
	assert.Equal(t, 0, len(log.messages))
	assertNoEvent(t, observer)
}

func TestPersistFailureReportsOrphanedAttachment(t *testing.T) {
	log := &memoryChatLog{appendErr: errors.New("provisioned throughput exceeded")}
	store := &stubAttachmentStore{}
	enqueuer := &recordingEnqueuer{}
	h := NewHub(log, store, enqueuer)
	go h.Run()

	sender := newTestClient(h)
	observer := newTestClient(h)
	h.RegisterClient(sender)
	h.RegisterClient(observer)

	sendEvent(t, h, sender, EventSendMessage, types.SendMessageInput{
		ComplaintID: "1700000000_deadbeef",
		SenderID:    "user-1",
		Message:     "with attachment",
		Attachment: &types.AttachmentInput{
			Name:  "receipt.pdf",
			Bytes: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
		},
	})

	event := receiveEvent(t, sender)
	assert.Equal(t, EventError, event.Type)
	var errPayload ErrorPayload
	assert.NoError(t, json.Unmarshal(event.Payload, &errPayload))
	assert.Equal(t, ErrorCodePersistenceFailed, errPayload.Code)
	assertNoEvent(t, observer)

	// the upload happened before the append, so the blob is now orphaned
	// and flagged for reconciliation
	assert.Equal(t, 1, store.uploads)
	assert.Equal(t, 1, len(enqueuer.tasks))
	assert.Equal(t, types.QueueTypeOrphanedAttachment, enqueuer.tasks[0].Type())

	var orphaned types.OrphanedAttachmentTask
	assert.NoError(t, json.Unmarshal(enqueuer.tasks[0].Payload(), &orphaned))
	assert.Equal(t, "1700000000_deadbeef", orphaned.ComplaintID)
	assert.Contains(t, orphaned.AttachmentURL, "receipt.pdf")
}

func TestUnknownEventType(t *testing.T) {
	h := NewHub(&memoryChatLog{}, &stubAttachmentStore{}, nil)

	client := newTestClient(h)
	h.handleEvent(client, &Event{Type: "subscribe", Payload: json.RawMessage(`{}`)})

	event := receiveEvent(t, client)
	assert.Equal(t, EventError, event.Type)
}

func waitForClientCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d", want)
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub(&memoryChatLog{}, &stubAttachmentStore{}, nil)
	go h.Run()

	client := newTestClient(h)
	h.RegisterClient(client)
	waitForClientCount(t, h, 1)

	h.UnregisterClient(client)
	waitForClientCount(t, h, 0)

	_, open := <-client.send
	assert.False(t, open)
}
