package receipt

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/zombor/fintrack-api/internal/categorize"
)

const (
	amountExpr   = `(\d[\d,]*(?:\.\d+)?)`
	currencyExpr = `(?:rs\.?|₹|inr)?`
	monthExpr    = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*`
)

var (
	headerWords = []string{"receipt", "invoice", "bill", "cash memo"}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`),
		regexp.MustCompile(`(?i)(\d{1,2}\s+` + monthExpr + `\s+\d{2,4})`),
		regexp.MustCompile(`(?i)date\s*:?\s*(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`),
		regexp.MustCompile(`(?i)date\s*:?\s*(\d{1,2}\s+` + monthExpr + `\s+\d{2,4})`),
	}

	// Day first, as printed on Indian receipts
	dateLayouts = []string{
		"2/1/2006", "2-1-2006", "2.1.2006",
		"2/1/06", "2-1-06", "2.1.06",
		"2 Jan 2006", "2 January 2006",
	}

	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\btotal\s*(?:amount)?\s*:?\s*` + currencyExpr + `\s*` + amountExpr),
		regexp.MustCompile(`(?i)\b(?:grand|net|final)\s+total\s*:?\s*` + currencyExpr + `\s*` + amountExpr),
		regexp.MustCompile(`(?i)\bamount\s*(?:payable|paid|due)\s*:?\s*` + currencyExpr + `\s*` + amountExpr),
		regexp.MustCompile(`(?i)(?:\brs\.?|₹|\binr\b)\s*` + amountExpr + `\s*(?:only|/-)?`),
		regexp.MustCompile(`(?i)\b(?:total|amount|sum)(?:\s|$).*?` + currencyExpr + `\s*` + amountExpr),
	}

	subtotalPattern = regexp.MustCompile(`(?i)\bsub\s*-?\s*total\b.*?` + amountExpr + `\s*$`)
	taxPattern      = regexp.MustCompile(`(?i)\b(?:[csi]?gst|tax|vat)\b.*?(\d[\d,]*\.\d{2})\s*$`)

	itemPatterns = []*regexp.Regexp{
		// name qty x price
		regexp.MustCompile(`(?i)^(\p{L}[\p{L}\p{N}\s&\-.']*?)\s+(\d+(?:\.\d+)?)\s*[x@*]\s*` + currencyExpr + `\s*` + amountExpr + `\s*$`),
		// name price
		regexp.MustCompile(`(?i)^(\p{L}[\p{L}\p{N}\s&\-.']*?)\s+` + currencyExpr + `\s*` + amountExpr + `\s*$`),
	}

	nonItemWords = []string{
		"total", "subtotal", "tax", "amount", "change", "cash", "credit", "card",
		"gst", "cgst", "sgst", "invoice", "date", "phone", "bill no",
	}

	receiptTypes = []struct {
		Name     string
		Keywords []string
	}{
		{"Food", []string{"restaurant", "cafe", "food", "dining", "meal", "lunch", "dinner", "breakfast"}},
		{"Grocery", []string{"grocery", "supermarket", "mart", "store", "kirana", "provision"}},
		{"Medical", []string{"pharmacy", "medical", "medicine", "hospital", "clinic", "doctor", "healthcare"}},
		{"Utility", []string{"electricity", "water", "gas", "utility", "bill", "broadband", "internet", "phone"}},
		{"Transportation", []string{"travel", "transport", "fuel", "petrol", "diesel", "gas", "taxi", "uber", "ola"}},
		{"Entertainment", []string{"movie", "cinema", "theatre", "entertainment", "game", "play"}},
		{"Shopping", []string{"mall", "shop", "store", "retail", "clothing", "apparel", "electronics"}},
		{"Education", []string{"school", "college", "university", "tuition", "course", "class", "education"}},
		{"Investment", []string{"investment", "mutual fund", "stock", "share", "bond", "deposit", "fd", "rd"}},
	}
)

// ParseText extracts structured receipt data from OCR text. Nothing here
// fails: fields that cannot be found fall back to now, zero, "General" or an
// empty item list.
func ParseText(text string, now time.Time) *Receipt {
	lines := nonEmptyLines(text)

	total := findTotal(lines)
	items := findItems(lines)
	merchant := findMerchant(lines)

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}

	return &Receipt{
		Merchant:    merchant,
		Date:        findDate(lines, now),
		Total:       total,
		Subtotal:    findSubtotal(lines),
		Tax:         findTax(lines),
		Category:    categorize.Categorize(merchant, total, strings.Join(names, " ")),
		ReceiptType: findReceiptType(text),
		Items:       items,
		RawText:     text,
	}
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func parseAmount(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// findMerchant takes the first line unless it looks like a document header
func findMerchant(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	merchant := lines[0]
	if utf8.RuneCountInString(merchant) < 3 || containsAny(strings.ToLower(merchant), headerWords) {
		if len(lines) > 1 {
			merchant = lines[1]
		}
	}
	return merchant
}

// findDate returns the first date that parses, scanning lines then patterns
// then layouts in order
func findDate(lines []string, now time.Time) time.Time {
	for _, line := range lines {
		for _, pattern := range datePatterns {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			candidate := strings.Join(strings.Fields(m[1]), " ")
			for _, layout := range dateLayouts {
				if d, err := time.Parse(layout, candidate); err == nil {
					return d
				}
			}
		}
	}
	return now
}

func findTotal(lines []string) decimal.Decimal {
	for _, line := range lines {
		if subtotalPattern.MatchString(line) {
			continue
		}
		for _, pattern := range totalPatterns {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if amount, ok := parseAmount(m[1]); ok && amount.IsPositive() {
				return amount
			}
		}
	}
	return decimal.Zero
}

func findSubtotal(lines []string) *decimal.Decimal {
	for _, line := range lines {
		if m := subtotalPattern.FindStringSubmatch(line); m != nil {
			if amount, ok := parseAmount(m[1]); ok {
				return &amount
			}
		}
	}
	return nil
}

// findTax sums every tax line, so CGST and SGST split across two lines add up
func findTax(lines []string) *decimal.Decimal {
	var (
		sum   decimal.Decimal
		found bool
	)
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "total") {
			continue
		}
		if m := taxPattern.FindStringSubmatch(line); m != nil {
			if amount, ok := parseAmount(m[1]); ok {
				sum = sum.Add(amount)
				found = true
			}
		}
	}
	if !found {
		return nil
	}
	return &sum
}

func findReceiptType(text string) string {
	lower := strings.ToLower(text)
	for _, t := range receiptTypes {
		if containsAny(lower, t.Keywords) {
			return t.Name
		}
	}
	return "General"
}

func findItems(lines []string) []Item {
	items := make([]Item, 0)
	for _, line := range lines {
		if containsAny(strings.ToLower(line), nonItemWords) {
			continue
		}
		for i, pattern := range itemPatterns {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := strings.TrimSpace(m[1])
			quantity := decimal.NewFromInt(1)
			priceText := m[len(m)-1]
			if i == 0 {
				if q, ok := parseAmount(m[2]); ok && q.IsPositive() {
					quantity = q
				}
			}
			price, ok := parseAmount(priceText)
			if !ok || !price.IsPositive() || utf8.RuneCountInString(name) < 2 {
				continue
			}
			items = append(items, Item{Name: name, Price: price, Quantity: quantity})
			break
		}
	}
	return items
}
