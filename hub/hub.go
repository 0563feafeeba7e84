package hub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/digitalbox/go-digitalbox-server/metrics"
	"github.com/digitalbox/go-digitalbox-server/repository"
	"github.com/digitalbox/go-digitalbox-server/types"
)

// AttachmentStore uploads a chat attachment and returns its retrieval URL
type AttachmentStore interface {
	UploadAttachment(complaintID, messageID, filename string, content []byte) (string, error)
}

// TaskEnqueuer submits background tasks (satisfied by asynq.Client)
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Hub maintains the set of connected chat viewers, routes inbound events
// through the persistence pipeline and fans resulting envelopes out to every
// connection. There is no per-complaint subscription scoping: every connected
// viewer receives every message.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Outbound events to fan out to all clients
	broadcast chan *Event

	// Mutex to protect clients map
	mu sync.RWMutex

	chatLog     repository.ChatLog
	attachments AttachmentStore
	tasks       TaskEnqueuer
	validate    *validator.Validate
}

// NewHub creates a new Hub instance. tasks may be nil; orphaned attachments
// are then only logged, not queued for reconciliation.
func NewHub(chatLog repository.ChatLog, attachments AttachmentStore, tasks TaskEnqueuer) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Event, 256),
		chatLog:     chatLog,
		attachments: attachments,
		tasks:       tasks,
		validate:    validator.New(),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			metrics.ActiveChatConnections.Inc()
			global.Logger.Log("info", "chat client connected", "count", clientCount)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.ActiveChatConnections.Dec()
				global.Logger.Log("info", "chat client disconnected", "count", len(h.clients))
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if !client.deliver(event) {
					// client too far behind, drop the connection
					go func(c *Client) {
						global.Logger.Log("warn", "chat client send buffer full, dropping connection")
						h.unregister <- c
					}(client)
				}
			}
			h.mu.RUnlock()
			metrics.ChatBroadcastsTotal.Inc()
		}
	}
}

// RegisterClient adds a connection to the registry
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient removes a connection from the registry. Broadcasts already
// queued for other connections are unaffected.
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast fans an event out to all connected clients, the originator
// included. Delivery is best effort.
func (h *Hub) Broadcast(event *Event) {
	h.broadcast <- event
}

// handleEvent dispatches one inbound event. Runs on the client's read
// goroutine so backend latency stalls only that client's own flow.
func (h *Hub) handleEvent(c *Client, event *Event) {
	switch event.Type {
	case EventSendMessage:
		h.handleSendMessage(c, event.Payload)
	case EventRequestMessages:
		h.handleRequestMessages(c, event.Payload)
	default:
		c.sendError(ErrorCodeBadRequest, "unknown event type")
	}
}

func (h *Hub) handleSendMessage(c *Client, payload json.RawMessage) {
	var input types.SendMessageInput
	if err := json.Unmarshal(payload, &input); err != nil {
		c.sendError(ErrorCodeBadRequest, "malformed send_message payload")
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		c.sendError(ErrorCodeBadRequest, err.Error())
		return
	}

	messageID := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	// attachment first; a failed upload aborts the whole send
	attachmentURL := ""
	if input.Attachment != nil {
		content, dErr := base64.StdEncoding.DecodeString(input.Attachment.Bytes)
		if dErr != nil {
			c.sendError(ErrorCodeBadRequest, "attachment bytes are not valid base64")
			return
		}
		url, uErr := h.attachments.UploadAttachment(input.ComplaintID, messageID, input.Attachment.Name, content)
		if uErr != nil {
			c.sendError(ErrorCodeStorageUnavailable, "failed to store attachment")
			return
		}
		attachmentURL = url
		metrics.ChatAttachmentUploadsTotal.Inc()
	}

	message := &types.ChatMessage{
		ComplaintID:   input.ComplaintID,
		MessageID:     messageID,
		SenderID:      input.SenderID,
		Message:       input.Message,
		Timestamp:     timestamp,
		AttachmentURL: attachmentURL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if aErr := h.chatLog.Append(ctx, message); aErr != nil {
		metrics.ChatPersistFailuresTotal.Inc()
		c.sendError(ErrorCodePersistenceFailed, "failed to persist message")
		if attachmentURL != "" {
			h.reportOrphanedAttachment(message, aErr)
		}
		return
	}

	event, eErr := NewEvent(EventReceiveMessage, message)
	if eErr != nil {
		c.sendError(ErrorCodePersistenceFailed, "failed to encode message")
		return
	}
	h.Broadcast(event)
	metrics.ChatMessagesSentTotal.Inc()
}

func (h *Hub) handleRequestMessages(c *Client, payload json.RawMessage) {
	// the payload is a bare complaint id string
	var complaintID string
	if err := json.Unmarshal(payload, &complaintID); err != nil || complaintID == "" {
		c.sendError(ErrorCodeBadRequest, "request_messages payload must be a complaint id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	messages, lErr := h.chatLog.ListByComplaint(ctx, complaintID)
	if lErr != nil {
		c.sendError(ErrorCodePersistenceFailed, "failed to read chat history")
		return
	}
	// an unknown complaint replays as zero events, not as an error
	for _, message := range messages {
		event, eErr := NewEvent(EventReceiveMessage, message)
		if eErr != nil {
			continue
		}
		c.deliver(event)
	}
}

// reportOrphanedAttachment makes an upload without a persisted message
// visible for operator reconciliation. The blob itself stays put.
func (h *Hub) reportOrphanedAttachment(message *types.ChatMessage, cause error) {
	global.Logger.Log("warn", "attachment orphaned after persistence failure",
		"complaintId", message.ComplaintID, "messageId", message.MessageID,
		"attachmentUrl", message.AttachmentURL, "error", cause.Error())
	if h.tasks == nil {
		return
	}
	task, tErr := types.NewOrphanedAttachmentTask(&types.OrphanedAttachmentTask{
		ComplaintID:   message.ComplaintID,
		MessageID:     message.MessageID,
		AttachmentURL: message.AttachmentURL,
		Reason:        cause.Error(),
	})
	if tErr != nil {
		return
	}
	if _, qErr := h.tasks.Enqueue(task); qErr != nil {
		global.Logger.Log("error", "failed to enqueue orphaned attachment task", "error", qErr.Error())
	}
}
