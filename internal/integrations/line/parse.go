package line

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"shopping-list-bot/internal/domain"
)

// ErrInvalidSignature is returned when the X-Line-Signature header does not
// match the request body.
var ErrInvalidSignature = errors.New("line: invalid webhook signature")

// VerifySignature checks the X-Line-Signature header against body. An empty
// channel secret disables the check.
func VerifySignature(channelSecret, signature string, body []byte) error {
	if channelSecret == "" {
		return nil
	}
	if !webhook.ValidateSignature(channelSecret, signature, body) {
		return ErrInvalidSignature
	}
	return nil
}

// ParseFirstEvent decodes a webhook callback and returns its first event
// together with the number of events in the batch. Only the first event is
// ever handled; a batch size of zero means there is nothing to do.
func ParseFirstEvent(body []byte) (domain.InboundEvent, int, error) {
	var cb webhook.CallbackRequest
	if err := json.Unmarshal(body, &cb); err != nil {
		return domain.InboundEvent{}, 0, fmt.Errorf("line: decode callback: %w", err)
	}
	if len(cb.Events) == 0 {
		return domain.InboundEvent{}, 0, nil
	}
	return toInboundEvent(cb.Events[0]), len(cb.Events), nil
}

func toInboundEvent(event webhook.EventInterface) domain.InboundEvent {
	switch e := event.(type) {
	case webhook.FollowEvent:
		return domain.InboundEvent{
			Type:           domain.EventFollow,
			WebhookEventID: e.WebhookEventId,
			UserID:         userID(e.Source),
			ReplyToken:     e.ReplyToken,
		}
	case webhook.UnfollowEvent:
		return domain.InboundEvent{
			Type:           domain.EventUnfollow,
			WebhookEventID: e.WebhookEventId,
			UserID:         userID(e.Source),
		}
	case webhook.MessageEvent:
		ev := domain.InboundEvent{
			Type:           domain.EventMessage,
			WebhookEventID: e.WebhookEventId,
			UserID:         userID(e.Source),
			ReplyToken:     e.ReplyToken,
		}
		if text, ok := e.Message.(webhook.TextMessageContent); ok {
			ev.Text = text.Text
			ev.IsText = true
		}
		return ev
	case nil:
		return domain.InboundEvent{}
	default:
		return domain.InboundEvent{Type: e.GetType()}
	}
}

// userID returns the sender's user ID for any source kind.
func userID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}
	return ""
}
