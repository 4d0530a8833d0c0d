// Package sequence derives the human-readable registration identifier
// issued at approval time: <EVENT>-<REGIONCODE>-<PREFIX><SEQ>, for example
// SPICON26-ER-F001. The pure parts live here; the registrar service owns
// the serialized read-max-then-write step.
package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spicon/registration/internal/domain/entity"
)

// DefaultEventCode is used when no event code is configured
const DefaultEventCode = "SPICON26"

// DefaultPadWidth is the minimum digit width of the sequence suffix.
// Padding is cosmetic; sequences above 999 simply grow a digit.
const DefaultPadWidth = 3

// prefixRule maps a groupType substring to a category prefix. Rules are
// evaluated in order; the first match wins.
type prefixRule struct {
	substr string
	prefix string
}

var prefixRules = []prefixRule{
	{"family", "F"},
	{"couple", "C"},
	{"student", "S"},
	{"delegate", "D"},
}

// DefaultPrefix is assigned when no rule matches the group type
const DefaultPrefix = "G"

// PrefixFor maps a free-form group type to its single-letter category
// prefix. Total and deterministic: every input maps to exactly one prefix.
func PrefixFor(groupType string) string {
	lowered := strings.ToLower(groupType)
	for _, rule := range prefixRules {
		if strings.Contains(lowered, rule.substr) {
			return rule.prefix
		}
	}
	return DefaultPrefix
}

// Format builds the display identifier for sequence number n
func Format(eventCode string, region entity.Region, prefix string, n, padWidth int) string {
	return fmt.Sprintf("%s-%s-%s%0*d", eventCode, region.Code(), prefix, padWidth, n)
}

// Parse extracts the sequence number from an issued identifier. Returns
// false for anything that does not match the expected shape for the given
// scope; malformed persisted values are skipped, never fatal.
func Parse(eventCode string, region entity.Region, prefix, id string) (int, bool) {
	want := fmt.Sprintf("%s-%s-%s", eventCode, region.Code(), prefix)
	if !strings.HasPrefix(id, want) {
		return 0, false
	}

	digits := id[len(want):]
	if len(digits) == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Next computes the next sequence number from the identifiers already
// issued in a (region, prefix) scope: highest parsed value plus one, or 1
// when the scope is empty.
func Next(eventCode string, region entity.Region, prefix string, issued []string) int {
	max := 0
	for _, id := range issued {
		if n, ok := Parse(eventCode, region, prefix, id); ok && n > max {
			max = n
		}
	}
	return max + 1
}
