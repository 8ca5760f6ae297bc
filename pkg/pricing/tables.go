package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Unbounded marks the open upper end of the last tier in a table.
const Unbounded = math.MaxInt

const (
	// TrophyBlockSize is the number of trophies charged per trophy block.
	TrophyBlockSize = 50
	// BulkBlockSize is the number of trophies charged per bulk block.
	BulkBlockSize = 1000
	// MaxPowerLevel caps the power level used for multiplier lookups.
	MaxPowerLevel = 11
)

// PriceTier is a contiguous range of values charged at a single rate per block.
// Max is inclusive.
type PriceTier struct {
	Min  int
	Max  int
	Rate decimal.Decimal
}

// Contains reports whether v falls within the tier.
func (t PriceTier) Contains(v int) bool {
	return v >= t.Min && (t.Max == Unbounded || v <= t.Max)
}

// StepCostTable maps a tier label to its cumulative cost from the first label
// of its tier order.
type StepCostTable map[string]decimal.Decimal

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TrophyTiers is priced per 50-trophy block.
var TrophyTiers = []PriceTier{
	{Min: 0, Max: 499, Rate: d("0.50")},
	{Min: 500, Max: 749, Rate: d("0.75")},
	{Min: 750, Max: 999, Rate: d("1.00")},
	{Min: 1000, Max: 1099, Rate: d("2.00")},
	{Min: 1100, Max: 1199, Rate: d("2.50")},
	{Min: 1200, Max: 1299, Rate: d("3.00")},
	{Min: 1300, Max: 1399, Rate: d("3.50")},
	{Min: 1400, Max: 1499, Rate: d("4.00")},
	{Min: 1500, Max: 1599, Rate: d("4.50")},
	{Min: 1600, Max: 1699, Rate: d("5.00")},
	{Min: 1700, Max: 1799, Rate: d("5.50")},
	{Min: 1800, Max: 1899, Rate: d("6.50")},
	{Min: 1900, Max: 1999, Rate: d("7.50")},
	{Min: 2000, Max: Unbounded, Rate: d("7.50")},
}

// BulkTiers is priced per 1000-trophy block and keyed on total account trophies.
var BulkTiers = []PriceTier{
	{Min: 0, Max: 9999, Rate: d("5.00")},
	{Min: 10000, Max: 19999, Rate: d("7.50")},
	{Min: 20000, Max: 29999, Rate: d("10.00")},
	{Min: 30000, Max: 39999, Rate: d("11.00")},
	{Min: 40000, Max: 49999, Rate: d("12.50")},
	{Min: 50000, Max: 59999, Rate: d("15.00")},
	{Min: 60000, Max: 69999, Rate: d("17.50")},
	{Min: 70000, Max: 79999, Rate: d("20.00")},
	{Min: 80000, Max: 89999, Rate: d("25.00")},
	{Min: 90000, Max: 99999, Rate: d("30.00")},
	{Min: 100000, Max: 109999, Rate: d("45.00")},
	{Min: 110000, Max: 119999, Rate: d("60.00")},
	{Min: 120000, Max: 129999, Rate: d("75.00")},
	{Min: 130000, Max: 139999, Rate: d("100.00")},
	{Min: 140000, Max: 149999, Rate: d("150.00")},
	{Min: 150000, Max: Unbounded, Rate: d("150.00")},
}

// RankedOrder is the total order of ranked tiers, lowest first.
var RankedOrder = []string{
	"Bronze 1", "Bronze 2", "Bronze 3",
	"Silver 1", "Silver 2", "Silver 3",
	"Gold 1", "Gold 2", "Gold 3",
	"Diamond 1", "Diamond 2", "Diamond 3",
	"Mythic 1", "Mythic 2", "Mythic 3",
	"Legendary 1", "Legendary 2", "Legendary 3",
	"Masters 1", "Masters 2", "Masters 3",
	"Pro",
}

// RankedCosts holds the cumulative euro cost of reaching each ranked tier from Bronze 1.
var RankedCosts = StepCostTable{
	"Bronze 1":    d("0"),
	"Bronze 2":    d("0.25"),
	"Bronze 3":    d("0.60"),
	"Silver 1":    d("1.00"),
	"Silver 2":    d("1.50"),
	"Silver 3":    d("2.00"),
	"Gold 1":      d("2.50"),
	"Gold 2":      d("3.20"),
	"Gold 3":      d("3.90"),
	"Diamond 1":   d("4.60"),
	"Diamond 2":   d("6.10"),
	"Diamond 3":   d("7.60"),
	"Mythic 1":    d("9.10"),
	"Mythic 2":    d("11.60"),
	"Mythic 3":    d("14.60"),
	"Legendary 1": d("18.10"),
	"Legendary 2": d("25.10"),
	"Legendary 3": d("35.10"),
	"Masters 1":   d("48.10"),
	"Masters 2":   d("98.10"),
	"Masters 3":   d("178.10"),
	"Pro":         d("298.10"),
}

// MasteryOrder is the total order of mastery levels. Levels 1-3 are the
// Bronze tier, 4-6 Silver and 7-9 Gold.
var MasteryOrder = []string{
	"Level 1", "Level 2", "Level 3",
	"Level 4", "Level 5", "Level 6",
	"Level 7", "Level 8", "Level 9",
}

// MasteryCosts holds the cumulative euro cost of reaching each mastery level from Level 1.
var MasteryCosts = StepCostTable{
	"Level 1": d("0"),
	"Level 2": d("2"),
	"Level 3": d("5"),
	"Level 4": d("7"),
	"Level 5": d("13"),
	"Level 6": d("21"),
	"Level 7": d("36"),
	"Level 8": d("56"),
	"Level 9": d("86"),
}

type powerLevelBracket struct {
	upTo        int
	multipliers map[int]decimal.Decimal
}

// levelBand applies one multiplier to every power level in [from, to].
type levelBand struct {
	from, to   int
	multiplier string
}

func bracket(upTo int, bands ...levelBand) powerLevelBracket {
	m := make(map[int]decimal.Decimal)
	for _, b := range bands {
		for l := b.from; l <= b.to; l++ {
			m[l] = d(b.multiplier)
		}
	}
	return powerLevelBracket{upTo: upTo, multipliers: m}
}

// powerLevelBrackets is ordered by desired-trophy upper bound. Levels missing
// from a bracket use a multiplier of 1.
var powerLevelBrackets = []powerLevelBracket{
	bracket(500, levelBand{1, 2, "3.0"}, levelBand{3, 5, "2.0"}, levelBand{6, 7, "1.5"}, levelBand{8, 8, "1.2"}, levelBand{11, 11, "0.9"}),
	bracket(750, levelBand{1, 2, "3.0"}, levelBand{3, 5, "2.0"}, levelBand{6, 7, "1.75"}, levelBand{8, 8, "1.4"}, levelBand{11, 11, "0.9"}),
	bracket(1000, levelBand{1, 2, "3.0"}, levelBand{3, 5, "2.5"}, levelBand{6, 7, "2.0"}, levelBand{8, 8, "1.5"}),
	bracket(1200, levelBand{1, 2, "4.0"}, levelBand{3, 5, "3.0"}, levelBand{6, 7, "2.5"}, levelBand{8, 8, "1.75"}, levelBand{9, 9, "1.2"}),
	bracket(1500, levelBand{1, 2, "4.0"}, levelBand{3, 5, "3.0"}, levelBand{6, 7, "2.5"}, levelBand{8, 8, "1.8"}, levelBand{9, 9, "1.4"}, levelBand{10, 10, "1.05"}),
	bracket(1750, levelBand{1, 2, "5.0"}, levelBand{3, 5, "4.0"}, levelBand{6, 7, "3.0"}, levelBand{8, 8, "2.0"}, levelBand{9, 9, "1.5"}, levelBand{10, 10, "1.1"}),
	bracket(1900, levelBand{1, 2, "5.0"}, levelBand{3, 5, "4.0"}, levelBand{6, 7, "3.5"}, levelBand{8, 8, "2.25"}, levelBand{9, 9, "1.6"}, levelBand{10, 10, "1.15"}),
	bracket(Unbounded, levelBand{1, 2, "6.0"}, levelBand{3, 5, "4.5"}, levelBand{6, 7, "3.75"}, levelBand{8, 8, "2.5"}, levelBand{9, 9, "1.65"}, levelBand{10, 10, "1.25"}),
}

type p11Step struct {
	maxCount   int
	multiplier decimal.Decimal
}

// rankedP11Steps is keyed by the desired rank group. The first step whose
// maxCount is at least the customer's P11 count applies.
var rankedP11Steps = map[string][]p11Step{
	"Diamond":   {{14, d("1.5")}},
	"Mythic":    {{14, d("1.5")}},
	"Legendary": {{20, d("1.5")}, {30, d("1.1")}},
	"Masters 1": {{20, d("2")}, {30, d("1.5")}, {35, d("1.1")}},
	"Masters 2": {{20, d("3")}, {30, d("2")}, {35, d("1.5")}, {40, d("1.25")}, {45, d("1.1")}},
	"Masters 3": {{20, d("4")}, {30, d("3")}, {35, d("2.5")}, {40, d("2")}, {45, d("1.5")}, {50, d("1.25")}},
	"Pro":       {{20, d("5")}, {30, d("4")}, {35, d("3")}, {40, d("2.75")}, {45, d("2.25")}, {50, d("1.5")}, {55, d("1.25")}, {60, d("1.15")}},
}

// ValidateTiers checks that a tier table starts at zero, is contiguous and
// non-overlapping, and ends unbounded.
func ValidateTiers(tiers []PriceTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("tier table is empty")
	}
	if tiers[0].Min != 0 {
		return fmt.Errorf("first tier starts at %d, expected 0", tiers[0].Min)
	}
	for i, t := range tiers {
		if t.Rate.IsNegative() {
			return fmt.Errorf("tier %d has negative rate %s", i, t.Rate)
		}
		if t.Max != Unbounded && t.Max < t.Min {
			return fmt.Errorf("tier %d has max %d below min %d", i, t.Max, t.Min)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if prev.Max == Unbounded {
			return fmt.Errorf("tier %d follows an unbounded tier", i)
		}
		if t.Min != prev.Max+1 {
			return fmt.Errorf("tier %d starts at %d, expected %d", i, t.Min, prev.Max+1)
		}
	}
	if tiers[len(tiers)-1].Max != Unbounded {
		return fmt.Errorf("last tier must be unbounded")
	}
	return nil
}

// ValidateCostTable checks that every label of the order has a cost, that the
// first label costs nothing and that costs never decrease along the order.
func ValidateCostTable(order []string, costs StepCostTable) error {
	if len(order) == 0 {
		return fmt.Errorf("tier order is empty")
	}
	if len(costs) != len(order) {
		return fmt.Errorf("cost table has %d labels, order has %d", len(costs), len(order))
	}
	prev := decimal.Zero
	for i, label := range order {
		cost, ok := costs[label]
		if !ok {
			return fmt.Errorf("label %q has no cost", label)
		}
		if i == 0 && !cost.IsZero() {
			return fmt.Errorf("first label %q must cost 0, got %s", label, cost)
		}
		if cost.LessThan(prev) {
			return fmt.Errorf("cost of %q (%s) is below previous label (%s)", label, cost, prev)
		}
		prev = cost
	}
	return nil
}
