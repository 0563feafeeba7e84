package types

// ChatMessage is the persisted and broadcast unit of the complaint chat.
// The chat log stores the message text as received; the separately encrypted
// complaint archive is a different storage path (see ComplaintArchive).
type ChatMessage struct {
	ComplaintID   string `json:"complaint_id" dynamodbav:"complaint_id"`
	MessageID     string `json:"message_id" dynamodbav:"message_id"`
	SenderID      string `json:"sender_id" dynamodbav:"sender_id"`
	Message       string `json:"message" dynamodbav:"message"`
	Timestamp     string `json:"timestamp" dynamodbav:"timestamp"`
	AttachmentURL string `json:"attachment_url,omitempty" dynamodbav:"attachment_url,omitempty"`
}

// SendMessageInput is the send_message event payload. Attachment is optional;
// when present it carries the raw file content base64 encoded.
type SendMessageInput struct {
	ComplaintID string           `json:"complaint_id" validate:"required"`
	SenderID    string           `json:"sender_id" validate:"required"`
	Message     string           `json:"message" validate:"required"`
	Attachment  *AttachmentInput `json:"attachment,omitempty"`
}

type AttachmentInput struct {
	Name  string `json:"name" validate:"required"`
	Bytes string `json:"bytes" validate:"required,base64"`
}
