// Package categorize assigns transaction categories from merchant and
// description text using a fixed keyword table.
package categorize

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Income is returned for large payroll-like deposits.
	Income = "Income"
	// Other is returned when no keyword matches.
	Other = "Other"
)

var incomeThreshold = decimal.NewFromInt(500)

// Categorize determines the category for a transaction
func Categorize(merchant string, amount decimal.Decimal, description string) string {
	text := strings.ToLower(merchant + " " + description)

	if amount.GreaterThan(incomeThreshold) && containsAny(text, incomeWords) {
		return Income
	}

	best := Other
	maxHits := 0
	for _, c := range categoryKeywords {
		hits := 0
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > maxHits {
			maxHits = hits
			best = c.Name
		}
	}

	// Bill-like language wins over raw counts for utilities and housing.
	if containsAny(text, billWords) {
		if containsAny(text, utilityWords) {
			return "Utilities"
		}
		if containsAny(text, housingWords) {
			return "Housing"
		}
	}

	return best
}

// AllCategories returns every category Categorize can produce
func AllCategories() []string {
	categories := make([]string, 0, len(categoryKeywords)+2)
	seen := make(map[string]bool, len(categoryKeywords)+2)
	for _, c := range categoryKeywords {
		if !seen[c.Name] {
			seen[c.Name] = true
			categories = append(categories, c.Name)
		}
	}
	for _, extra := range []string{Income, Other} {
		if !seen[extra] {
			seen[extra] = true
			categories = append(categories, extra)
		}
	}
	return categories
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
