package pricing

import (
	"errors"
	"fmt"

	"github.com/boostdesk/ticket-bot/pkg/order"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidRange indicates that the desired value does not exceed the current one.
	ErrInvalidRange = errors.New("desired value must be greater than current value")

	// ErrNegativeValue indicates a negative trophy count.
	ErrNegativeValue = errors.New("values must not be negative")

	// ErrUnknownTier indicates a tier label missing from its order or cost table.
	ErrUnknownTier = errors.New("unknown tier label")

	// ErrNoBracket indicates that no price tier covers a value.
	ErrNoBracket = errors.New("no price tier covers value")

	// ErrInvalidBlockSize indicates a non-positive block size.
	ErrInvalidBlockSize = errors.New("block size must be positive")

	// ErrNotPriced indicates a category that is quoted manually by staff.
	ErrNotPriced = errors.New("category has no automatic price")

	// ErrUnknownCategory indicates a category the engine does not know.
	ErrUnknownCategory = errors.New("unknown category")
)

// IsLookupError reports whether err comes from a table lookup failure rather
// than from invalid user input.
func IsLookupError(err error) bool {
	return errors.Is(err, ErrUnknownTier) || errors.Is(err, ErrNoBracket)
}

// Quote is the outcome of a price calculation.
type Quote struct {
	Base       decimal.Decimal `json:"base"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Total      decimal.Decimal `json:"total"`
}

func newQuote(base, multiplier decimal.Decimal) Quote {
	return Quote{
		Base:       base,
		Multiplier: multiplier,
		Total:      base.Mul(multiplier).Round(2),
	}
}

// Equal reports whether two quotes carry the same amounts.
func (q Quote) Equal(other Quote) bool {
	return q.Base.Equal(other.Base) && q.Multiplier.Equal(other.Multiplier) && q.Total.Equal(other.Total)
}

// PriceByBlock walks from current to desired across the tier table. Within
// each tier the covered distance is charged in whole blocks, so a partial
// block at a tier boundary or at the end costs a full block at that tier's rate.
func PriceByBlock(current, desired int, tiers []PriceTier, blockSize int) (decimal.Decimal, error) {
	if current < 0 || desired < 0 {
		return decimal.Zero, ErrNegativeValue
	}
	if desired <= current {
		return decimal.Zero, ErrInvalidRange
	}
	if blockSize <= 0 {
		return decimal.Zero, ErrInvalidBlockSize
	}

	total := decimal.Zero
	pos := current
	for pos < desired {
		tier, ok := findTier(tiers, pos)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %d", ErrNoBracket, pos)
		}

		end := desired
		if tier.Max != Unbounded && tier.Max+1 < end {
			end = tier.Max + 1
		}

		segment := end - pos
		blocks := (segment + blockSize - 1) / blockSize
		total = total.Add(tier.Rate.Mul(decimal.NewFromInt(int64(blocks))))
		pos = end
	}

	return total.Round(2), nil
}

func findTier(tiers []PriceTier, v int) (PriceTier, bool) {
	for _, t := range tiers {
		if t.Contains(v) {
			return t, true
		}
	}
	return PriceTier{}, false
}

// PriceByCumulativeLookup returns the cost between two labels of a tier order.
func PriceByCumulativeLookup(current, desired string, tierOrder []string, costs StepCostTable) (decimal.Decimal, error) {
	ci := IndexOf(tierOrder, current)
	if ci < 0 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownTier, current)
	}
	di := IndexOf(tierOrder, desired)
	if di < 0 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownTier, desired)
	}
	if di <= ci {
		return decimal.Zero, ErrInvalidRange
	}

	currentCost, ok := costs[current]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no cost for %q", ErrUnknownTier, current)
	}
	desiredCost, ok := costs[desired]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no cost for %q", ErrUnknownTier, desired)
	}

	return desiredCost.Sub(currentCost).Round(2), nil
}

// TrophyPowerLevelMultiplier returns the multiplier for the bracket containing
// desiredTrophies at the given power level. Levels above MaxPowerLevel are
// capped; unlisted pairs return 1.
func TrophyPowerLevelMultiplier(desiredTrophies, powerLevel int) decimal.Decimal {
	if powerLevel > MaxPowerLevel {
		powerLevel = MaxPowerLevel
	}
	for _, b := range powerLevelBrackets {
		if desiredTrophies <= b.upTo {
			if m, ok := b.multipliers[powerLevel]; ok {
				return m
			}
			return decimal.NewFromInt(1)
		}
	}
	return decimal.NewFromInt(1)
}

// RankedP11Multiplier returns the multiplier applied to a ranked boost towards
// desired when the account has p11Count brawlers at power level 11.
func RankedP11Multiplier(desired string, p11Count int) decimal.Decimal {
	for _, step := range rankedP11Steps[rankGroup(desired)] {
		if p11Count <= step.maxCount {
			return step.multiplier
		}
	}
	return decimal.NewFromInt(1)
}

// TrophyPrice prices a trophy boost, applying the power level multiplier when given.
func TrophyPrice(current, desired int, powerLevel *int) (Quote, error) {
	base, err := PriceByBlock(current, desired, TrophyTiers, TrophyBlockSize)
	if err != nil {
		logrus.Debugf("trophy price %d -> %d failed: %v", current, desired, err)
		return Quote{}, err
	}

	multiplier := decimal.NewFromInt(1)
	if powerLevel != nil {
		multiplier = TrophyPowerLevelMultiplier(desired, *powerLevel)
	}
	return newQuote(base, multiplier), nil
}

// BulkPrice prices a bulk trophy boost on total account trophies.
func BulkPrice(current, desired int) (Quote, error) {
	base, err := PriceByBlock(current, desired, BulkTiers, BulkBlockSize)
	if err != nil {
		logrus.Debugf("bulk price %d -> %d failed: %v", current, desired, err)
		return Quote{}, err
	}
	return newQuote(base, decimal.NewFromInt(1)), nil
}

// RankedPrice prices a ranked boost. A nil p11Count skips the P11 multiplier.
func RankedPrice(current, desired string, p11Count *int) (Quote, error) {
	c, err := NormalizeRankLabel(current)
	if err != nil {
		return Quote{}, err
	}
	dst, err := NormalizeRankLabel(desired)
	if err != nil {
		return Quote{}, err
	}

	base, err := PriceByCumulativeLookup(c, dst, RankedOrder, RankedCosts)
	if err != nil {
		logrus.Debugf("ranked price %s -> %s failed: %v", c, dst, err)
		return Quote{}, err
	}

	multiplier := decimal.NewFromInt(1)
	if p11Count != nil {
		multiplier = RankedP11Multiplier(dst, *p11Count)
	}
	return newQuote(base, multiplier), nil
}

// MasteryPrice prices a mastery boost between two levels.
func MasteryPrice(current, desired string) (Quote, error) {
	c, err := NormalizeMasteryLabel(current)
	if err != nil {
		return Quote{}, err
	}
	dst, err := NormalizeMasteryLabel(desired)
	if err != nil {
		return Quote{}, err
	}

	base, err := PriceByCumulativeLookup(c, dst, MasteryOrder, MasteryCosts)
	if err != nil {
		logrus.Debugf("mastery price %s -> %s failed: %v", c, dst, err)
		return Quote{}, err
	}
	return newQuote(base, decimal.NewFromInt(1)), nil
}

// Request carries everything needed to price one order.
type Request struct {
	Category   order.Category
	Current    order.Target
	Desired    order.Target
	PowerLevel *int
	P11Count   *int
}

// Compute prices a request according to its category.
func Compute(req Request) (Quote, error) {
	switch req.Category {
	case order.CategoryTrophies:
		return TrophyPrice(req.Current.Trophies, req.Desired.Trophies, req.PowerLevel)
	case order.CategoryBulk:
		return BulkPrice(req.Current.Trophies, req.Desired.Trophies)
	case order.CategoryRanked:
		return RankedPrice(req.Current.Tier, req.Desired.Tier, req.P11Count)
	case order.CategoryMastery:
		return MasteryPrice(req.Current.Tier, req.Desired.Tier)
	case order.CategoryOther:
		return Quote{}, ErrNotPriced
	}
	return Quote{}, fmt.Errorf("%w: %q", ErrUnknownCategory, req.Category)
}
