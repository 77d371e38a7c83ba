package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"shopping-list-bot/internal/domain"
)

const textMessageBody = `{
  "destination": "Uxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx",
  "events": [
    {
      "type": "message",
      "mode": "active",
      "timestamp": 1700000000000,
      "webhookEventId": "01HEVENT0000000000000000001",
      "deliveryContext": {"isRedelivery": false},
      "source": {"type": "user", "userId": "U4af4980629"},
      "replyToken": "nHuyWiB7yP5Zw52FIkcQobQuGDXCTA",
      "message": {"id": "444573844083572737", "type": "text", "quoteToken": "q3Plxr4AgKd", "text": "牛乳"}
    },
    {
      "type": "follow",
      "mode": "active",
      "timestamp": 1700000000001,
      "webhookEventId": "01HEVENT0000000000000000002",
      "deliveryContext": {"isRedelivery": false},
      "source": {"type": "user", "userId": "U4af4980630"},
      "replyToken": "second-token"
    }
  ]
}`

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestParseFirstEvent_TextMessageTakesOnlyFirstEvent(t *testing.T) {
	ev, n, err := ParseFirstEvent([]byte(textMessageBody))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, domain.InboundEvent{
		Type:           domain.EventMessage,
		WebhookEventID: "01HEVENT0000000000000000001",
		UserID:         "U4af4980629",
		ReplyToken:     "nHuyWiB7yP5Zw52FIkcQobQuGDXCTA",
		Text:           "牛乳",
		IsText:         true,
	}, ev)
}

func TestParseFirstEvent_Follow(t *testing.T) {
	body := `{"destination":"U0","events":[{"type":"follow","mode":"active","timestamp":1700000000000,
		"webhookEventId":"01HFOLLOW","deliveryContext":{"isRedelivery":false},
		"source":{"type":"user","userId":"U123"},"replyToken":"follow-token"}]}`
	ev, n, err := ParseFirstEvent([]byte(body))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, domain.EventFollow, ev.Type)
	require.Equal(t, "U123", ev.UserID)
	require.Equal(t, "follow-token", ev.ReplyToken)
}

func TestParseFirstEvent_Unfollow(t *testing.T) {
	body := `{"destination":"U0","events":[{"type":"unfollow","mode":"active","timestamp":1700000000000,
		"webhookEventId":"01HUNFOLLOW","deliveryContext":{"isRedelivery":false},
		"source":{"type":"user","userId":"U123"}}]}`
	ev, _, err := ParseFirstEvent([]byte(body))
	require.NoError(t, err)
	require.Equal(t, domain.EventUnfollow, ev.Type)
	require.Equal(t, "U123", ev.UserID)
	require.Empty(t, ev.ReplyToken)
}

func TestParseFirstEvent_GroupSourceUsesSenderUserID(t *testing.T) {
	body := `{"destination":"U0","events":[{"type":"message","mode":"active","timestamp":1700000000000,
		"webhookEventId":"01HGROUP","deliveryContext":{"isRedelivery":false},
		"source":{"type":"group","groupId":"C123","userId":"U456"},"replyToken":"tok",
		"message":{"id":"1","type":"text","quoteToken":"q","text":"見せて"}}]}`
	ev, _, err := ParseFirstEvent([]byte(body))
	require.NoError(t, err)
	require.Equal(t, "U456", ev.UserID)
	require.Equal(t, "見せて", ev.Text)
}

func TestParseFirstEvent_NonTextMessage(t *testing.T) {
	body := `{"destination":"U0","events":[{"type":"message","mode":"active","timestamp":1700000000000,
		"webhookEventId":"01HSTICKER","deliveryContext":{"isRedelivery":false},
		"source":{"type":"user","userId":"U123"},"replyToken":"tok",
		"message":{"id":"1","type":"sticker","quoteToken":"q","packageId":"446","stickerId":"1988","stickerResourceType":"STATIC"}}]}`
	ev, _, err := ParseFirstEvent([]byte(body))
	require.NoError(t, err)
	require.Equal(t, domain.EventMessage, ev.Type)
	require.False(t, ev.IsText)
	require.Empty(t, ev.Text)
}

func TestParseFirstEvent_OtherEventTypeKeepsType(t *testing.T) {
	body := `{"destination":"U0","events":[{"type":"postback","mode":"active","timestamp":1700000000000,
		"webhookEventId":"01HPOSTBACK","deliveryContext":{"isRedelivery":false},
		"source":{"type":"user","userId":"U123"},"replyToken":"tok","postback":{"data":"a=1"}}]}`
	ev, n, err := ParseFirstEvent([]byte(body))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "postback", ev.Type)
}

func TestParseFirstEvent_MissingEvents(t *testing.T) {
	for _, body := range []string{`{}`, `{"destination":"U0"}`, `{"events":[]}`} {
		ev, n, err := ParseFirstEvent([]byte(body))
		require.NoError(t, err, body)
		require.Zero(t, n, body)
		require.Equal(t, domain.InboundEvent{}, ev, body)
	}
}

func TestParseFirstEvent_InvalidJSON(t *testing.T) {
	_, _, err := ParseFirstEvent([]byte(`not-json`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode callback")
}

func TestVerifySignature(t *testing.T) {
	body := []byte(textMessageBody)

	require.NoError(t, VerifySignature("", "", body))
	require.NoError(t, VerifySignature("secret", sign("secret", body), body))
	require.ErrorIs(t, VerifySignature("secret", sign("other", body), body), ErrInvalidSignature)
	require.ErrorIs(t, VerifySignature("secret", "", body), ErrInvalidSignature)
}
