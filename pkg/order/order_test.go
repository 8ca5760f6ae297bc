package order

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr bool
	}{
		{name: "trophies", input: "trophies", want: CategoryTrophies},
		{name: "mixed case with spaces", input: "  Ranked ", want: CategoryRanked},
		{name: "other", input: "other", want: CategoryOther},
		{name: "unknown", input: "prestige", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCategory(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePaymentMethod(t *testing.T) {
	for _, m := range PaymentMethods {
		got, err := ParsePaymentMethod(string(m))
		if err != nil {
			t.Errorf("ParsePaymentMethod(%q) unexpected error: %v", m, err)
		}
		if got != m {
			t.Errorf("ParsePaymentMethod(%q) = %q", m, got)
		}
	}

	if _, err := ParsePaymentMethod("cash"); err == nil {
		t.Error("expected error for unsupported payment method")
	}
}

func TestTargetString(t *testing.T) {
	if got := TrophyTarget(650).String(); got != "650" {
		t.Errorf("TrophyTarget(650).String() = %q", got)
	}
	if got := TierTarget("Masters 2").String(); got != "Masters 2" {
		t.Errorf("TierTarget.String() = %q", got)
	}
	if !(Target{}).IsZero() {
		t.Error("empty target should be zero")
	}
}

func TestOrderHasRange(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		want  bool
	}{
		{"trophies from zero", Order{Category: CategoryTrophies, Current: TrophyTarget(0), Desired: TrophyTarget(50)}, true},
		{"trophies unset", Order{Category: CategoryTrophies}, false},
		{"bulk", Order{Category: CategoryBulk, Current: TrophyTarget(20000), Desired: TrophyTarget(21000)}, true},
		{"ranked", Order{Category: CategoryRanked, Current: TierTarget("Gold 1"), Desired: TierTarget("Gold 2")}, true},
		{"ranked without desired", Order{Category: CategoryRanked, Current: TierTarget("Gold 1")}, false},
		{"mastery", Order{Category: CategoryMastery, Current: TierTarget("Level 1"), Desired: TierTarget("Level 3")}, true},
		{"other", Order{Category: CategoryOther, Request: "custom"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.order.HasRange(); got != tt.want {
				t.Errorf("HasRange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderSummary(t *testing.T) {
	o := &Order{
		Category: CategoryRanked,
		Current:  TierTarget("Gold 1"),
		Desired:  TierTarget("Diamond 2"),
		Price:    decimal.RequireFromString("3.60"),
	}
	if got, want := o.Summary(), "Ranked Boost: Gold 1 → Diamond 2"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
	if !o.Priced() {
		t.Error("ranked order should be priced")
	}

	other := &Order{Category: CategoryOther, Request: "account recovery"}
	if other.Priced() {
		t.Error("other order should not be priced")
	}
	if got, want := other.Summary(), "Other: account recovery"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestTicketSetMetadata(t *testing.T) {
	ticket := &Ticket{OrderID: "o-1"}
	ticket.SetMetadata("recap_message_id", "123")
	if ticket.Metadata["recap_message_id"] != "123" {
		t.Errorf("metadata not stored: %v", ticket.Metadata)
	}
}
