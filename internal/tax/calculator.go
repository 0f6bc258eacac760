package tax

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// IncomeTax computes federal, state and payroll taxes on an annual income
func IncomeTax(req IncomeRequest) (*Result, error) {
	if _, err := ParseFilingStatus(string(req.FilingStatus)); err != nil {
		return nil, err
	}
	state := normalizeState(req.State)
	income := req.AnnualIncome

	deduction := decimal.Zero
	switch req.DeductionType {
	case Itemized:
		if req.CustomDeduction != nil {
			deduction = *req.CustomDeduction
		}
	default:
		deduction = standardDeduction[req.FilingStatus]
	}

	federal := federalIncomeTax(income, req.FilingStatus, deduction)

	stateRate := lookupRate(stateIncomeTaxRates, state, defaultStateIncomeRate)
	stateTax := income.Mul(stateRate)

	socialSecurity := decimal.Min(income, socialSecurityWageBase).Mul(socialSecurityRate)
	medicare := income.Mul(medicareRate)

	total := federal.Add(stateTax).Add(socialSecurity).Add(medicare)
	effective := percentOf(total, income)

	return &Result{
		FederalTax:    federal,
		StateTax:      stateTax,
		TotalTax:      total,
		EffectiveRate: effective,
		Breakdown: []Breakdown{
			{Name: "Federal Income Tax", Amount: federal, Rate: percentOf(federal, income)},
			{Name: "State Income Tax", Amount: stateTax, Rate: stateRate.Mul(hundred)},
			{Name: "Social Security", Amount: socialSecurity, Rate: socialSecurityRate.Mul(hundred)},
			{Name: "Medicare", Amount: medicare, Rate: medicareRate.Mul(hundred)},
		},
		Insights: incomeInsights(income, federal, stateTax, effective, req.FilingStatus),
	}, nil
}

// federalIncomeTax runs the income remaining after the deduction through the
// marginal brackets of the filing status.
func federalIncomeTax(income decimal.Decimal, status FilingStatus, deduction decimal.Decimal) decimal.Decimal {
	taxable := decimal.Max(decimal.Zero, income.Sub(deduction))

	tax := decimal.Zero
	lower := decimal.Zero
	for _, b := range federalBrackets[status] {
		if b.UpTo.IsZero() || taxable.LessThanOrEqual(b.UpTo) {
			tax = tax.Add(taxable.Sub(lower).Mul(b.Rate))
			break
		}
		tax = tax.Add(b.UpTo.Sub(lower).Mul(b.Rate))
		lower = b.UpTo
	}
	return tax
}

// SalesTax computes the state sales tax on a purchase. Essential purchases
// are taxed at half the state rate.
func SalesTax(purchaseAmount decimal.Decimal, state string, essential bool) *Result {
	state = normalizeState(state)
	rate := lookupRate(salesTaxRates, state, defaultSalesRate)
	if essential {
		rate = rate.Mul(essentialSalesFactor)
	}
	amount := purchaseAmount.Mul(rate)

	return &Result{
		FederalTax:    decimal.Zero,
		StateTax:      amount,
		TotalTax:      amount,
		EffectiveRate: rate.Mul(hundred),
		Breakdown: []Breakdown{
			{Name: "State Sales Tax", Amount: amount, Rate: rate.Mul(hundred)},
		},
		Insights: salesInsights(state, essential),
	}
}

// PropertyTax computes the annual property tax for a property value
func PropertyTax(propertyValue decimal.Decimal, state, county string) *Result {
	state = normalizeState(state)
	rate := lookupRate(propertyTaxRates, state, defaultPropertyRate).Mul(CountyAdjustment(county))
	amount := propertyValue.Mul(rate)

	return &Result{
		FederalTax:    decimal.Zero,
		StateTax:      amount,
		TotalTax:      amount,
		EffectiveRate: rate.Mul(hundred),
		Breakdown: []Breakdown{
			{Name: "Property Tax", Amount: amount, Rate: rate.Mul(hundred)},
		},
		Insights: propertyInsights(propertyValue, amount, state),
	}
}

// CountyAdjustment maps a county name onto 0.9, 1.0 or 1.1. This is a
// placeholder for a real per-county rate table; an empty county yields 1.0.
func CountyAdjustment(county string) decimal.Decimal {
	county = strings.TrimSpace(county)
	if county == "" {
		return decimal.NewFromInt(1)
	}
	bucket := int64(xxhash.Sum64String(county) % 3)
	return decimal.New(9+bucket, -1)
}

func lookupRate(table map[string]decimal.Decimal, state string, fallback decimal.Decimal) decimal.Decimal {
	if rate, ok := table[state]; ok {
		return rate
	}
	return fallback
}

func normalizeState(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
