package discord

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/boostdesk/ticket-bot/pkg/order"
)

// maxChannelNameLength keeps ticket names well below the Discord limit of 100.
const maxChannelNameLength = 90

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

var rankAbbreviations = map[string]string{
	"bronze":    "b",
	"silver":    "s",
	"gold":      "g",
	"diamond":   "d",
	"mythic":    "my",
	"legendary": "l",
	"masters":   "m",
	"pro":       "p",
}

var masteryTierAbbreviations = []string{"b", "s", "g"}

// SanitizeUsername strips everything but letters, digits, '_' and '-' and lowercases the rest.
func SanitizeUsername(username string) string {
	return strings.ToLower(unsafeNameChars.ReplaceAllString(username, ""))
}

// TicketChannelName derives the ticket channel name from an order, for
// example "b-g2-booster" for Bronze 1 to Gold 2 or "400-600-booster".
func TicketChannelName(o *order.Order) string {
	user := SanitizeUsername(o.Username)
	if user == "" {
		user = o.UserID
	}

	var name string
	switch o.Category {
	case order.CategoryRanked:
		name = fmt.Sprintf("%s-%s-%s", rankAbbrev(o.Current.Tier), rankAbbrev(o.Desired.Tier), user)
	case order.CategoryMastery:
		name = fmt.Sprintf("%s-%s-%s", masteryAbbrev(o.Current.Tier), masteryAbbrev(o.Desired.Tier), user)
	case order.CategoryTrophies, order.CategoryBulk:
		name = fmt.Sprintf("%d-%d-%s", o.Current.Trophies, o.Desired.Trophies, user)
	default:
		name = fmt.Sprintf("%s-%s", o.Category, user)
	}

	name = strings.ToLower(name)
	if len(name) > maxChannelNameLength {
		name = name[:maxChannelNameLength]
	}
	return name
}

// rankAbbrev turns "Gold 2" into "g2". Division 1 and undivided ranks have no suffix.
func rankAbbrev(label string) string {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) == 0 {
		return ""
	}
	base, ok := rankAbbreviations[fields[0]]
	if !ok {
		base = fields[0][:1]
	}
	if len(fields) > 1 && (fields[1] == "2" || fields[1] == "3") {
		return base + fields[1]
	}
	return base
}

// masteryAbbrev turns "Level 5" into "s2" (Silver 2).
func masteryAbbrev(label string) string {
	fields := strings.Fields(label)
	if len(fields) != 2 {
		return ""
	}
	level, err := strconv.Atoi(fields[1])
	if err != nil || level < 1 || level > 3*len(masteryTierAbbreviations) {
		return ""
	}
	base := masteryTierAbbreviations[(level-1)/3]
	if div := (level-1)%3 + 1; div > 1 {
		return base + strconv.Itoa(div)
	}
	return base
}

// TicketTopic summarizes the order in the channel topic.
func TicketTopic(o *order.Order) string {
	parts := []string{
		fmt.Sprintf("User: <@%s>", o.UserID),
		fmt.Sprintf("Type: %s", o.Category),
	}
	if o.Priced() {
		parts = append(parts, fmt.Sprintf("Price: €%s", o.Price.StringFixed(2)))
	}
	if o.PaymentMethod != "" {
		parts = append(parts, fmt.Sprintf("Payment: %s", o.PaymentMethod.Label()))
	}
	if o.HasRange() {
		parts = append(parts, fmt.Sprintf("From: %s to %s", o.Current, o.Desired))
	}
	return strings.Join(parts, " | ")
}
