package pricing

import (
	"testing"
)

func TestValidateTiers(t *testing.T) {
	if err := ValidateTiers(TrophyTiers); err != nil {
		t.Errorf("TrophyTiers invalid: %v", err)
	}
	if err := ValidateTiers(BulkTiers); err != nil {
		t.Errorf("BulkTiers invalid: %v", err)
	}
	if len(TrophyTiers) != 14 {
		t.Errorf("expected 14 trophy tiers, got %d", len(TrophyTiers))
	}

	tests := []struct {
		name  string
		tiers []PriceTier
	}{
		{name: "empty", tiers: nil},
		{name: "does not start at zero", tiers: []PriceTier{{Min: 1, Max: Unbounded, Rate: d("1")}}},
		{name: "gap", tiers: []PriceTier{{Min: 0, Max: 9, Rate: d("1")}, {Min: 11, Max: Unbounded, Rate: d("1")}}},
		{name: "overlap", tiers: []PriceTier{{Min: 0, Max: 9, Rate: d("1")}, {Min: 5, Max: Unbounded, Rate: d("1")}}},
		{name: "bounded end", tiers: []PriceTier{{Min: 0, Max: 9, Rate: d("1")}}},
		{name: "negative rate", tiers: []PriceTier{{Min: 0, Max: Unbounded, Rate: d("-1")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateTiers(tt.tiers); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateCostTable(t *testing.T) {
	if err := ValidateCostTable(RankedOrder, RankedCosts); err != nil {
		t.Errorf("ranked costs invalid: %v", err)
	}
	if err := ValidateCostTable(MasteryOrder, MasteryCosts); err != nil {
		t.Errorf("mastery costs invalid: %v", err)
	}
	if len(RankedOrder) != 22 {
		t.Errorf("expected 22 ranked tiers, got %d", len(RankedOrder))
	}
	if len(MasteryOrder) != 9 {
		t.Errorf("expected 9 mastery levels, got %d", len(MasteryOrder))
	}

	decreasing := StepCostTable{"A": d("0"), "B": d("2"), "C": d("1")}
	if err := ValidateCostTable([]string{"A", "B", "C"}, decreasing); err == nil {
		t.Error("expected error for decreasing costs")
	}

	missing := StepCostTable{"A": d("0"), "B": d("1")}
	if err := ValidateCostTable([]string{"A", "C"}, missing); err == nil {
		t.Error("expected error for missing label")
	}
}

func TestNormalizeRankLabel(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "Bronze 1", want: "Bronze 1"},
		{input: "gold ii", want: "Gold 2"},
		{input: "  masters   III ", want: "Masters 3"},
		{input: "pro", want: "Pro"},
		{input: "Pro 1", wantErr: true},
		{input: "Diamond 4", wantErr: true},
		{input: "Platinum 1", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeRankLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeRankLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeRankLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeMasteryLabel(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "Level 1", want: "Level 1"},
		{input: "level 9", want: "Level 9"},
		{input: "Bronze 1", want: "Level 1"},
		{input: "Silver 3", want: "Level 6"},
		{input: "gold ii", want: "Level 8"},
		{input: "Level 10", wantErr: true},
		{input: "Diamond 1", wantErr: true},
		{input: "Gold", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeMasteryLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeMasteryLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeMasteryLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRankedP11Multiplier(t *testing.T) {
	tests := []struct {
		desired string
		p11     int
		want    string
	}{
		{desired: "Gold 3", p11: 0, want: "1"},
		{desired: "Diamond 1", p11: 14, want: "1.5"},
		{desired: "Mythic 3", p11: 15, want: "1"},
		{desired: "Legendary 2", p11: 20, want: "1.5"},
		{desired: "Legendary 2", p11: 21, want: "1.1"},
		{desired: "Masters 1", p11: 35, want: "1.1"},
		{desired: "Masters 2", p11: 45, want: "1.1"},
		{desired: "Masters 3", p11: 50, want: "1.25"},
		{desired: "Masters 3", p11: 51, want: "1"},
		{desired: "Pro", p11: 60, want: "1.15"},
		{desired: "Pro", p11: 61, want: "1"},
	}

	for _, tt := range tests {
		got := RankedP11Multiplier(tt.desired, tt.p11)
		if !got.Equal(d(tt.want)) {
			t.Errorf("RankedP11Multiplier(%q, %d) = %s, want %s", tt.desired, tt.p11, got, tt.want)
		}
	}
}
