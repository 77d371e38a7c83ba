// Package line adapts the LINE Messaging API SDK: it decodes webhook
// callbacks into domain events and sends text replies and pushes.
package line

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// MaxTextLength is the LINE limit for a single text message, in characters.
const MaxTextLength = 5000

// messagingAPI is the subset of *messaging_api.MessagingApiAPI used here.
type messagingAPI interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
	PushMessage(req *messaging_api.PushMessageRequest, xLineRetryKey string) (*messaging_api.PushMessageResponse, error)
}

// Messenger sends text messages through the LINE Messaging API.
type Messenger struct {
	api      messagingAPI
	retryKey func() string
}

// NewMessenger creates a Messenger backed by the LINE SDK client for the
// given channel access token.
func NewMessenger(channelToken string) (*Messenger, error) {
	if strings.TrimSpace(channelToken) == "" {
		return nil, errors.New("line: channel access token must not be empty")
	}
	client, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("line: create messaging API client: %w", err)
	}
	return newMessenger(client)
}

func newMessenger(api messagingAPI) (*Messenger, error) {
	if api == nil {
		return nil, errors.New("line: api must not be nil")
	}
	return &Messenger{api: api, retryKey: uuid.NewString}, nil
}

// Reply answers an inbound event with its one-time reply token. A consumed or
// expired token is reported as an error; nothing is retried.
func (m *Messenger) Reply(ctx context.Context, replyToken, text string) error {
	if replyToken == "" {
		return errors.New("line: reply: reply token is required")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("line: reply: %w", err)
	}
	_, err := m.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{textMessage(text)},
	})
	if err != nil {
		return fmt.Errorf("line: reply: %w", err)
	}
	return nil
}

// Push sends a message to a user outside the reply-token flow. Each call
// carries a fresh retry key so LINE can drop duplicates.
func (m *Messenger) Push(ctx context.Context, to, text string) error {
	if to == "" {
		return errors.New("line: push: recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("line: push: %w", err)
	}
	_, err := m.api.PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: []messaging_api.MessageInterface{textMessage(text)},
	}, m.retryKey())
	if err != nil {
		return fmt.Errorf("line: push: %w", err)
	}
	return nil
}

func textMessage(text string) *messaging_api.TextMessage {
	return &messaging_api.TextMessage{Text: TruncateText(text, MaxTextLength)}
}

// TruncateText shortens text to at most limit characters, ending with "..."
// when anything was cut.
func TruncateText(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	if limit <= 3 {
		return string([]rune(text)[:limit])
	}
	return string([]rune(text)[:limit-3]) + "..."
}
