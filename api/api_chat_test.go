package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tj/assert"

	"github.com/digitalbox/go-digitalbox-server/types"
)

type fakeChatLog struct {
	messages []*types.ChatMessage
	listErr  error
}

func (f *fakeChatLog) Append(ctx context.Context, message *types.ChatMessage) error {
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeChatLog) ListByComplaint(ctx context.Context, complaintID string) ([]*types.ChatMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*types.ChatMessage{}
	for _, msg := range f.messages {
		if msg.ComplaintID == complaintID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func newChatTestRouter(chatLog *fakeChatLog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chatApi := NewChatApi(nil, chatLog)
	router.GET("/api/v1/chat/:complaint_id", chatApi.GetChatHistory)
	return router
}

func TestGetChatHistoryInStoreOrder(t *testing.T) {
	chatLog := &fakeChatLog{
		messages: []*types.ChatMessage{
			{ComplaintID: "1700000000_deadbeef", MessageID: "a", SenderID: "user-1", Message: "first"},
			{ComplaintID: "1700000000_deadbeef", MessageID: "b", SenderID: "support", Message: "second"},
			{ComplaintID: "1700000001_cafebabe", MessageID: "c", SenderID: "user-2", Message: "other complaint"},
		},
	}
	router := newChatTestRouter(chatLog)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/chat/1700000000_deadbeef", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var messages []*types.ChatMessage
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	assert.Equal(t, 2, len(messages))
	assert.Equal(t, "a", messages[0].MessageID)
	assert.Equal(t, "b", messages[1].MessageID)
}

func TestGetChatHistoryUnknownComplaint(t *testing.T) {
	router := newChatTestRouter(&fakeChatLog{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/chat/1700009999_00000000", nil)
	router.ServeHTTP(w, req)

	// unknown complaint is an empty history, not a 404
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestGetChatHistoryBackendError(t *testing.T) {
	router := newChatTestRouter(&fakeChatLog{listErr: types.ErrPersistenceFailed})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/chat/1700000000_deadbeef", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var apiErr ApiError
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Code)
}
