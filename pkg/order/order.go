package order

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category identifies the kind of boost being ordered.
type Category string

const (
	CategoryTrophies Category = "trophies"
	CategoryBulk     Category = "bulk"
	CategoryRanked   Category = "ranked"
	CategoryMastery  Category = "mastery"
	CategoryOther    Category = "other"
)

// Categories lists every supported category in panel order.
var Categories = []Category{
	CategoryTrophies,
	CategoryBulk,
	CategoryRanked,
	CategoryMastery,
	CategoryOther,
}

// ParseCategory converts a raw category string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTrophies, CategoryBulk, CategoryRanked, CategoryMastery, CategoryOther:
		return true
	}
	return false
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryTrophies:
		return "Trophy Boost"
	case CategoryBulk:
		return "Bulk Trophies"
	case CategoryRanked:
		return "Ranked Boost"
	case CategoryMastery:
		return "Mastery Boost"
	case CategoryOther:
		return "Other"
	}
	return string(c)
}

// TierBased reports whether the category is priced between two named tiers
// rather than two trophy counts.
func (c Category) TierBased() bool {
	return c == CategoryRanked || c == CategoryMastery
}

// PaymentMethod is the method a customer chose to pay with.
type PaymentMethod string

const (
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentCrypto         PaymentMethod = "crypto"
	PaymentIBAN           PaymentMethod = "iban"
	PaymentPayPalGiftcard PaymentMethod = "paypal_giftcard"
	PaymentDutch          PaymentMethod = "dutch"
	PaymentAppleGiftcard  PaymentMethod = "apple_giftcard"
)

// PaymentMethods lists every accepted payment method in menu order.
var PaymentMethods = []PaymentMethod{
	PaymentPayPal,
	PaymentCrypto,
	PaymentIBAN,
	PaymentPayPalGiftcard,
	PaymentDutch,
	PaymentAppleGiftcard,
}

// ParsePaymentMethod converts a raw select value into a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range PaymentMethods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown payment method: %q", s)
}

// Label returns the display name of the payment method.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentPayPal:
		return "PayPal"
	case PaymentCrypto:
		return "Crypto"
	case PaymentIBAN:
		return "IBAN Bank Transfer"
	case PaymentPayPalGiftcard:
		return "PayPal Giftcard"
	case PaymentDutch:
		return "Dutch Payment Methods"
	case PaymentAppleGiftcard:
		return "German Apple Giftcard"
	}
	return string(m)
}

// Target is one end of a boost: a trophy count for numeric categories or a
// tier label for ranked and mastery boosts.
type Target struct {
	Trophies int    `json:"trophies,omitempty"`
	Tier     string `json:"tier,omitempty"`
}

// TrophyTarget builds a numeric target.
func TrophyTarget(n int) Target {
	return Target{Trophies: n}
}

// TierTarget builds a labelled target.
func TierTarget(label string) Target {
	return Target{Tier: label}
}

// IsZero reports whether the target has not been set.
func (t Target) IsZero() bool {
	return t.Tier == "" && t.Trophies == 0
}

func (t Target) String() string {
	if t.Tier != "" {
		return t.Tier
	}
	return strconv.Itoa(t.Trophies)
}

// Order is a finalized, priced order ready to be handed to ticket provisioning.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	Username      string          `json:"username"`
	Category      Category        `json:"category"`
	Current       Target          `json:"current"`
	Desired       Target          `json:"desired"`
	BrawlerLevel  *int            `json:"brawler_level,omitempty"`
	P11Count      *int            `json:"p11_count,omitempty"`
	Brawler       string          `json:"brawler,omitempty"`
	Request       string          `json:"request,omitempty"`
	Price         decimal.Decimal `json:"price"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Priced reports whether the order carries a computed price. Orders in the
// Other category are quoted by staff inside the ticket.
func (o *Order) Priced() bool {
	return o.Category != CategoryOther
}

// HasRange reports whether both ends of the boost are known. Trophy orders
// may start at 0, so the category decides what counts as set.
func (o *Order) HasRange() bool {
	switch o.Category {
	case CategoryTrophies, CategoryBulk:
		return o.Desired.Trophies > o.Current.Trophies
	case CategoryRanked, CategoryMastery:
		return o.Current.Tier != "" && o.Desired.Tier != ""
	}
	return false
}

// Summary returns a one line description such as "Ranked Boost: Gold 1 → Diamond 2".
func (o *Order) Summary() string {
	if o.Category == CategoryOther {
		return fmt.Sprintf("%s: %s", o.Category.Label(), o.Request)
	}
	return fmt.Sprintf("%s: %s → %s", o.Category.Label(), o.Current, o.Desired)
}

// Ticket is the result of provisioning an order. Hand-off actions fill it in
// as they run.
type Ticket struct {
	OrderID     string            `json:"order_id"`
	ChannelID   string            `json:"channel_id,omitempty"`
	ChannelName string            `json:"channel_name,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewTicket creates an empty ticket for an order.
func NewTicket(orderID string) *Ticket {
	return &Ticket{
		OrderID:  orderID,
		Metadata: make(map[string]string),
	}
}

// SetMetadata records a key/value pair produced by a hand-off action.
func (t *Ticket) SetMetadata(key, value string) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]string)
	}
	t.Metadata[key] = value
}
