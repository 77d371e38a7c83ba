package domain

// Event types delivered by the LINE platform that the bot reacts to.
const (
	EventFollow   = "follow"
	EventUnfollow = "unfollow"
	EventMessage  = "message"
)

// InboundEvent is the first event of a webhook batch, reduced to the fields
// the bot uses. It is never persisted.
type InboundEvent struct {
	Type           string
	WebhookEventID string
	UserID         string
	ReplyToken     string
	// Text is set only for text message events.
	Text   string
	IsText bool
}
