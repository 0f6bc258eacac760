// Package tax implements simplified income, sales and property tax
// calculations over static rate tables.
package tax

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// FilingStatus selects the federal bracket table
type FilingStatus string

const (
	Single          FilingStatus = "single"
	MarriedJoint    FilingStatus = "married-joint"
	MarriedSeparate FilingStatus = "married-separate"
	HeadOfHousehold FilingStatus = "head"
)

// DeductionType selects how the income deduction is determined
type DeductionType string

const (
	Standard DeductionType = "standard"
	Itemized DeductionType = "itemized"
)

// Breakdown is one line of a tax result
type Breakdown struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"` // percent
}

// Result is the outcome of a tax calculation
type Result struct {
	FederalTax    decimal.Decimal `json:"federal_tax"`
	StateTax      decimal.Decimal `json:"state_tax"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	EffectiveRate decimal.Decimal `json:"effective_rate"` // percent
	Breakdown     []Breakdown     `json:"breakdown"`
	Insights      string          `json:"insights"`
}

// IncomeRequest holds the inputs of an income tax calculation
type IncomeRequest struct {
	AnnualIncome    decimal.Decimal
	FilingStatus    FilingStatus
	State           string
	DeductionType   DeductionType
	CustomDeduction *decimal.Decimal
}

// ErrUnknownFilingStatus is returned for filing statuses without a bracket table
var ErrUnknownFilingStatus = errors.New("unknown filing status")

// ParseFilingStatus validates a filing status string
func ParseFilingStatus(s string) (FilingStatus, error) {
	fs := FilingStatus(s)
	if _, ok := federalBrackets[fs]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilingStatus, s)
	}
	return fs, nil
}
