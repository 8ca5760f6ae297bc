package pricing

import (
	"fmt"
	"strings"
)

var divisions = map[string]int{
	"1": 1, "2": 2, "3": 3,
	"i": 1, "ii": 2, "iii": 3,
}

var masteryTiers = map[string]int{
	"bronze": 0,
	"silver": 1,
	"gold":   2,
}

// IndexOf returns the position of label in order, or -1 when it is absent.
func IndexOf(order []string, label string) int {
	for i, l := range order {
		if l == label {
			return i
		}
	}
	return -1
}

// NormalizeRankLabel turns user supplied rank text such as "gold ii" or
// "Masters 3" into its canonical RankedOrder label.
func NormalizeRankLabel(label string) (string, error) {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty rank", ErrUnknownTier)
	}

	name := strings.ToUpper(fields[0][:1]) + fields[0][1:]
	if name == "Pro" && len(fields) == 1 {
		return name, nil
	}
	if len(fields) != 2 {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, label)
	}

	div, ok := divisions[fields[1]]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, label)
	}

	canonical := fmt.Sprintf("%s %d", name, div)
	if IndexOf(RankedOrder, canonical) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, label)
	}
	return canonical, nil
}

// NormalizeMasteryLabel accepts either "Level N" or the tier form
// "Bronze|Silver|Gold N" and returns the canonical MasteryOrder label.
func NormalizeMasteryLabel(label string) (string, error) {
	fields := strings.Fields(strings.ToLower(label))
	if len(fields) != 2 {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, label)
	}

	if fields[0] == "level" {
		canonical := "Level " + fields[1]
		if IndexOf(MasteryOrder, canonical) < 0 {
			return "", fmt.Errorf("%w: %q", ErrUnknownTier, label)
		}
		return canonical, nil
	}

	tier, ok := masteryTiers[fields[0]]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, label)
	}
	div, ok := divisions[fields[1]]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, label)
	}
	return fmt.Sprintf("Level %d", tier*3+div), nil
}

// rankGroup returns the key used for P11 multiplier lookups. Masters
// divisions are priced individually, every other rank by its name.
func rankGroup(label string) string {
	if strings.HasPrefix(label, "Masters") {
		return label
	}
	if i := strings.IndexByte(label, ' '); i > 0 {
		return label[:i]
	}
	return label
}
