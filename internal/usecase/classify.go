package usecase

import (
	"regexp"
	"strings"

	"shopping-list-bot/internal/domain"
)

// Rule is one entry of the ordered classification table. Lower priority
// values are evaluated first and the first match wins.
type Rule struct {
	Priority int
	Intent   domain.Intent
	match    func(text string) (item string, ok bool)
}

var (
	showListRe   = regexp.MustCompile(`(見せて|みせて)$`)
	showHelpRe   = regexp.MustCompile(`(教えて|おしえて)$`)
	deleteItemRe = regexp.MustCompile(`(?s)^(.+?)\s*を?(?:消|け)して$`)
	deleteAllRe  = regexp.MustCompile(`^\s*を?(?:消|け)して$`)
)

var rules = []Rule{
	{Priority: 1, Intent: domain.IntentShowList, match: matchSuffix(showListRe)},
	{Priority: 2, Intent: domain.IntentShowHelp, match: matchSuffix(showHelpRe)},
	{Priority: 3, Intent: domain.IntentDeleteItem, match: matchDeleteItem},
	{Priority: 4, Intent: domain.IntentDeleteAll, match: matchSuffix(deleteAllRe)},
	{Priority: 5, Intent: domain.IntentAddItem, match: func(text string) (string, bool) { return text, true }},
}

// Rules returns the classification table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify maps a text message to a command. It never fails: text that
// matches no trigger is an item to add, verbatim.
func Classify(text string) domain.Command {
	for _, r := range rules {
		if item, ok := r.match(text); ok {
			return domain.Command{Intent: r.Intent, Item: item}
		}
	}
	return domain.Command{Intent: domain.IntentAddItem, Item: text}
}

func matchSuffix(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		return "", re.MatchString(text)
	}
}

// matchDeleteItem extracts the item in "<item>を消して". A bare trigger such
// as "を消して" has no item and is left to the delete-all rule.
func matchDeleteItem(text string) (string, bool) {
	if deleteAllRe.MatchString(text) {
		return "", false
	}
	m := deleteItemRe.FindStringSubmatch(text)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return "", false
	}
	return m[1], true
}
