package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/digitalbox/go-digitalbox-server/types"
)

// ChatLog is the durable, per-complaint ordered message log. Append is
// last-write-wins on message_id; ListByComplaint returns entries in the
// store's index order, ascending.
type ChatLog interface {
	Append(ctx context.Context, msg *types.ChatMessage) error
	ListByComplaint(ctx context.Context, complaintID string) ([]*types.ChatMessage, error)
}

// DynamoChatLog implements ChatLog on a DynamoDB table keyed
// (complaint_id, message_id), queried through a secondary index.
type DynamoChatLog struct {
	client *dynamodb.Client
	table  string
	index  string
}

func NewDynamoChatLog(client *dynamodb.Client, table, index string) *DynamoChatLog {
	return &DynamoChatLog{
		client: client,
		table:  table,
		index:  index,
	}
}

func (d *DynamoChatLog) Append(ctx context.Context, msg *types.ChatMessage) error {
	item, mErr := attributevalue.MarshalMap(msg)
	if mErr != nil {
		return fmt.Errorf("failed to marshal chat message: %w", mErr)
	}
	_, pErr := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if pErr != nil {
		errorCode := "unknown"
		var apiErr smithy.APIError
		if errors.As(pErr, &apiErr) {
			errorCode = apiErr.ErrorCode()
		}
		global.Logger.Log("error", "failed to append chat message", "complaintId", msg.ComplaintID, "messageId", msg.MessageID, "code", errorCode, "error", pErr.Error())
		return types.ErrPersistenceFailed
	}
	return nil
}

func (d *DynamoChatLog) ListByComplaint(ctx context.Context, complaintID string) ([]*types.ChatMessage, error) {
	messages := []*types.ChatMessage{}

	paginator := dynamodb.NewQueryPaginator(d.client, &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		IndexName:              aws.String(d.index),
		KeyConditionExpression: aws.String("complaint_id = :complaint_id"),
		ExpressionAttributeValues: map[string]dynamodbtypes.AttributeValue{
			":complaint_id": &dynamodbtypes.AttributeValueMemberS{Value: complaintID},
		},
		ScanIndexForward: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, qErr := paginator.NextPage(ctx)
		if qErr != nil {
			global.Logger.Log("error", "failed to query chat messages", "complaintId", complaintID, "error", qErr.Error())
			return nil, types.ErrPersistenceFailed
		}
		var pageMessages []*types.ChatMessage
		if uErr := attributevalue.UnmarshalListOfMaps(page.Items, &pageMessages); uErr != nil {
			return nil, fmt.Errorf("failed to unmarshal chat messages: %w", uErr)
		}
		messages = append(messages, pageMessages...)
	}
	return messages, nil
}
