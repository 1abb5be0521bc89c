package lock

import "strings"

// mentionMarker must appear next to a keyword for the message to count as
// a ping rather than casual chatter.
const mentionMarker = "@"

// Markers the guarded bot uses when a spawn is caught.
const (
	catchSuccessMarker = "Congratulations"
	catchLevelMarker   = "You caught a Level"
)

type trigger struct {
	keyword  string
	category Category
}

// triggerTable is checked in order; the first keyword found wins.
var triggerTable = []trigger{
	{"shiny hunt pings", CategoryShiny},
	{"collection pings", CategoryCollection},
	{"rare ping", CategoryRare},
	{"regional ping", CategoryRegional},
}

// Classifier maps inbound messages to lock categories and recognises
// catch confirmations from the guarded bot.
type Classifier struct {
	trusted   map[string]struct{}
	guardedID string
}

// NewClassifier accepts triggers only from trustedIDs. guardedID is the
// bot whose catch messages interrupt a countdown.
func NewClassifier(trustedIDs []string, guardedID string) *Classifier {
	trusted := make(map[string]struct{}, len(trustedIDs))
	for _, id := range trustedIDs {
		if id = strings.TrimSpace(id); id != "" {
			trusted[id] = struct{}{}
		}
	}
	return &Classifier{trusted: trusted, guardedID: guardedID}
}

// Classify returns the category requested by a message, if any.
func (c *Classifier) Classify(senderID, text string) (Category, bool) {
	if _, ok := c.trusted[senderID]; !ok {
		return CategoryNone, false
	}
	content := strings.ToLower(text)
	if !strings.Contains(content, mentionMarker) {
		return CategoryNone, false
	}
	for _, t := range triggerTable {
		if strings.Contains(content, t.keyword) {
			return t.category, true
		}
	}
	return CategoryNone, false
}

// IsInterrupt reports whether a message is the guarded bot confirming a catch.
func (c *Classifier) IsInterrupt(senderID, text string) bool {
	if c.guardedID == "" || senderID != c.guardedID {
		return false
	}
	return strings.Contains(text, catchSuccessMarker) && strings.Contains(text, catchLevelMarker)
}

// IsTrusted reports whether senderID is on the trigger allow-list.
func (c *Classifier) IsTrusted(senderID string) bool {
	_, ok := c.trusted[senderID]
	return ok
}
