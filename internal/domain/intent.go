package domain

// Intent is the classified purpose of a text message.
type Intent string

const (
	IntentShowList   Intent = "show_list"
	IntentShowHelp   Intent = "show_help"
	IntentDeleteItem Intent = "delete_item"
	IntentDeleteAll  Intent = "delete_all"
	IntentAddItem    Intent = "add_item"
)

// Command is the result of classifying a message. Item is empty for intents
// that do not target a single list entry.
type Command struct {
	Intent Intent
	Item   string
}
