package api

import (
	"context"
	"net/http"
	"time"

	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/digitalbox/go-digitalbox-server/hub"
	"github.com/digitalbox/go-digitalbox-server/repository"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// chat is open to any origin, access control is out of scope here
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ChatApi struct {
	chatHub *hub.Hub
	chatLog repository.ChatLog
}

func NewChatApi(chatHub *hub.Hub, chatLog repository.ChatLog) *ChatApi {
	return &ChatApi{
		chatHub: chatHub,
		chatLog: chatLog,
	}
}

// WebSocket
// @Summary Connect to the complaint chat
// @Description Upgrades the connection and attaches it to the chat hub
// @Tags Chat
// @Failure 400 {object} api.ApiError "upgrade failed"
// @Router /api/v1/chatws [get]
func (ca *ChatApi) WebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		global.Logger.Log("error", "websocket upgrade failed", "error", err.Error())
		ApiErrorf(c, http.StatusBadRequest, "websocket upgrade failed")
		return
	}
	client := hub.NewClient(conn, ca.chatHub)
	ca.chatHub.RegisterClient(client)

	go client.WritePump()
	go client.ReadPump()
}

// GetChatHistory
// @Summary Get chat history for a complaint
// @Description Returns all chat messages for the complaint in insertion order
// @Tags Chat
// @Param complaint_id path string true "Complaint ID"
// @Success 200 {object} []types.ChatMessage
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 500 {object} api.ApiError "failed to read chat history"
// @Accept json
// @Produce json
// @Router /api/v1/chat/{complaint_id} [get]
func (ca *ChatApi) GetChatHistory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	complaintID := c.Param("complaint_id")
	if complaintID == "" {
		ApiErrorf(c, http.StatusBadRequest, "complaint_id required")
		return
	}

	messages, lErr := ca.chatLog.ListByComplaint(ctx, complaintID)
	if lErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to read chat history: %s", lErr.Error())
		return
	}
	c.JSON(http.StatusOK, messages)
}
