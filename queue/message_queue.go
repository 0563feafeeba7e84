package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/digitalbox/go-digitalbox-server/repository"
	"github.com/digitalbox/go-digitalbox-server/services"
	"github.com/digitalbox/go-digitalbox-server/types"
)

type MessageQueue struct {
	summaryService *services.SummaryService
	env            *types.Environment
}

func NewMessageQueue(chatLog repository.ChatLog, env *types.Environment) *MessageQueue {
	summaryService := services.NewSummaryService(chatLog, env)

	return &MessageQueue{
		summaryService: summaryService,
		env:            env,
	}
}

// ProcessOrphanedAttachmentTask records an attachment whose chat message was
// never persisted. The blob is left in place for a manual cleanup decision;
// deleting here would also destroy the only evidence of the failed send.
func (mqs *MessageQueue) ProcessOrphanedAttachmentTask(ctx context.Context, t *asynq.Task) error {
	var task types.OrphanedAttachmentTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	global.Logger.Log("warn", "orphaned chat attachment",
		"complaintId", task.ComplaintID,
		"messageId", task.MessageID,
		"attachmentUrl", task.AttachmentURL,
		"reason", task.Reason)
	return nil
}

// ProcessChatSummaryTask warms the summary cache for a complaint so the next
// REST read is served from redis
func (mqs *MessageQueue) ProcessChatSummaryTask(ctx context.Context, t *asynq.Task) error {
	var task types.ChatSummaryTask
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	_, sErr := mqs.summaryService.Summarize(ctx, task.ComplaintID)
	if sErr != nil {
		if sErr == types.ErrNotFound {
			// nothing to summarize, do not retry
			return fmt.Errorf("no chat history for %s: %w", task.ComplaintID, asynq.SkipRetry)
		}
		return sErr
	}
	return nil
}
