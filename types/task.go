package types

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

var (
	QueueTypeOrphanedAttachment = "attachment:orphaned"
	QueueTypeChatSummary        = "chat:summarize"
)

// OrphanedAttachmentTask records an attachment that was uploaded but whose
// message never made it into the chat log. The blob is not deleted; the task
// makes the orphan visible so an operator can reconcile.
type OrphanedAttachmentTask struct {
	ComplaintID   string `json:"complaint_id"`
	MessageID     string `json:"message_id"`
	AttachmentURL string `json:"attachment_url"`
	Reason        string `json:"reason"`
}

type ChatSummaryTask struct {
	ComplaintID string `json:"complaint_id"`
}

func NewOrphanedAttachmentTask(task *OrphanedAttachmentTask) (*asynq.Task, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(QueueTypeOrphanedAttachment, payload), nil
}

func NewChatSummaryTask(task *ChatSummaryTask) (*asynq.Task, error) {
	payload, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(QueueTypeChatSummary, payload), nil
}
