package repository

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"

	"github.com/digitalbox/go-digitalbox-server/types"
)

// The table schema keys on complaint_id/message_id; the attribute names the
// mapping produces are part of the storage contract.
func TestChatMessageAttributeMapping(t *testing.T) {
	msg := &types.ChatMessage{
		ComplaintID: "1700000000_ab12cd34",
		MessageID:   "m-1",
		SenderID:    "u1",
		Message:     "hi",
		Timestamp:   "2026-08-29T10:00:00Z",
	}
	item, err := attributevalue.MarshalMap(msg)
	if err != nil {
		t.Fatal(err)
	}
	for _, attr := range []string{"complaint_id", "message_id", "sender_id", "message", "timestamp"} {
		if _, ok := item[attr]; !ok {
			t.Fatalf("missing attribute %s", attr)
		}
	}
	// no attachment means no attachment_url attribute at all
	if _, ok := item["attachment_url"]; ok {
		t.Fatal("attachment_url should be omitted when empty")
	}

	var out types.ChatMessage
	if uErr := attributevalue.UnmarshalMap(item, &out); uErr != nil {
		t.Fatal(uErr)
	}
	assert.Equal(t, *msg, out)
}

func TestChatMessageAttachmentAttribute(t *testing.T) {
	msg := &types.ChatMessage{
		ComplaintID:   "1700000000_ab12cd34",
		MessageID:     "m-2",
		SenderID:      "u1",
		Message:       "see attached",
		Timestamp:     "2026-08-29T10:01:00Z",
		AttachmentURL: "https://bucket.s3.eu-central-1.amazonaws.com/attachments/1700000000_ab12cd34/m-2/f.png",
	}
	item, err := attributevalue.MarshalMap(msg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := item["attachment_url"]; !ok {
		t.Fatal("attachment_url attribute missing")
	}
}
