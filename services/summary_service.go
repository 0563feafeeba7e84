package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"

	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/digitalbox/go-digitalbox-server/repository"
	"github.com/digitalbox/go-digitalbox-server/types"
)

const (
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	summaryCacheExpire = 15 * time.Minute
)

// SummaryService condenses a complaint's chat history into a short summary
// via the OpenAI completions API. Summaries are cached in redis.
type SummaryService struct {
	chatLog     repository.ChatLog
	env         *types.Environment
	restyClient *resty.Client
}

func NewSummaryService(chatLog repository.ChatLog, env *types.Environment) *SummaryService {
	return &SummaryService{
		chatLog:     chatLog,
		env:         env,
		restyClient: resty.New().SetTimeout(60 * time.Second),
	}
}

type chatCompletionRequest struct {
	Model    string                  `json:"model"`
	Messages []chatCompletionMessage `json:"messages"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Summarize returns a summary of the complaint's chat history, serving from
// cache when fresh. ErrNotFound when the complaint has no messages yet.
func (ss *SummaryService) Summarize(ctx context.Context, complaintID string) (string, error) {
	cacheKey := summaryCacheKey(complaintID)
	cached, cErr := ss.env.RedisClient.Get(ctx, cacheKey).Result()
	if cErr == nil && cached != "" {
		return cached, nil
	}
	if cErr != nil && cErr != redis.Nil {
		global.Logger.Log("CacheError", "SummaryService.Summarize", cErr.Error())
	}

	messages, lErr := ss.chatLog.ListByComplaint(ctx, complaintID)
	if lErr != nil {
		return "", lErr
	}
	if len(messages) == 0 {
		return "", types.ErrNotFound
	}

	texts := make([]string, 0, len(messages))
	for _, message := range messages {
		texts = append(texts, message.Message)
	}

	summary, sErr := ss.complete(ctx, strings.Join(texts, "\n"))
	if sErr != nil {
		return "", sErr
	}

	if setErr := ss.env.RedisClient.Set(ctx, cacheKey, summary, summaryCacheExpire).Err(); setErr != nil {
		global.Logger.Log("CacheError", "SummaryService.Summarize failed to cache summary", setErr.Error())
	}
	return summary, nil
}

func (ss *SummaryService) complete(ctx context.Context, transcript string) (string, error) {
	model := global.Conf.OpenAI.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	request := chatCompletionRequest{
		Model: model,
		Messages: []chatCompletionMessage{
			{Role: "system", Content: "Summarize the following complaint chat transcript in a few sentences."},
			{Role: "user", Content: transcript},
		},
	}

	var response chatCompletionResponse
	resp, rErr := ss.restyClient.R().
		SetContext(ctx).
		SetAuthToken(global.Conf.OpenAI.ApiKey).
		SetBody(request).
		SetResult(&response).
		Post(openAIEndpoint)
	if rErr != nil {
		return "", rErr
	}
	if resp.IsError() || response.Error != nil {
		errMsg := resp.Status()
		if response.Error != nil {
			errMsg = response.Error.Message
		}
		global.Logger.Log("error", "summarization request failed", "status", resp.Status(), "error", errMsg)
		return "", fmt.Errorf("summarization failed: %s", errMsg)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("summarization returned no choices")
	}
	return response.Choices[0].Message.Content, nil
}

func summaryCacheKey(complaintID string) string {
	return fmt.Sprintf("summary:%x", xxhash.Sum64String(complaintID))
}
