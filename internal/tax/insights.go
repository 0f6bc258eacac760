package tax

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	highFactor = decimal.RequireFromString("1.2")
	lowFactor  = decimal.RequireFromString("0.8")
)

func incomeInsights(income, federal, stateTax, effective decimal.Decimal, status FilingStatus) string {
	var insights []string

	if effective.GreaterThan(nationalAvgEffectiveRate.Mul(highFactor)) {
		insights = append(insights, "Your effective tax rate is significantly higher than the national average.")
	} else if effective.LessThan(nationalAvgEffectiveRate.Mul(lowFactor)) {
		insights = append(insights, "Your effective tax rate is lower than the national average.")
	}

	if income.GreaterThan(decimal.NewFromInt(50000)) && effective.GreaterThan(decimal.NewFromInt(15)) {
		savings := income.Mul(d("0.05")).Mul(d("0.22"))
		insights = append(insights, fmt.Sprintf(
			"Consider maximizing retirement contributions to reduce your taxable income. Contributing to a 401(k) or IRA could save you approximately $%s in taxes.",
			savings.StringFixed(2)))
	}

	if status == MarriedJoint {
		insights = append(insights, "As a married couple filing jointly, ensure you're taking advantage of all available deductions such as mortgage interest, charitable contributions, and medical expenses.")
	}

	if stateTax.GreaterThan(federal.Mul(d("0.3"))) {
		insights = append(insights, "Your state tax burden is relatively high. Consider consulting a tax professional about state-specific deductions and credits.")
	}

	return strings.Join(insights, " ")
}

func salesInsights(state string, essential bool) string {
	var insights []string

	stateRate := lookupRate(salesTaxRates, state, defaultSalesRate).Mul(hundred)
	switch {
	case stateRate.GreaterThan(nationalAvgSalesRate):
		insights = append(insights, fmt.Sprintf("%s has a higher sales tax rate than the national average of %s%%.", state, nationalAvgSalesRate.StringFixed(2)))
	case stateRate.LessThan(nationalAvgSalesRate):
		insights = append(insights, fmt.Sprintf("%s has a lower sales tax rate than the national average of %s%%.", state, nationalAvgSalesRate.StringFixed(2)))
	}

	if essential {
		insights = append(insights, "Essential items often qualify for reduced tax rates or exemptions in many states.")
	}

	if slices.Contains(taxFreeShoppingStates, state) {
		insights = append(insights, fmt.Sprintf("%s offers tax-free shopping days for certain items. Check your state's tax authority website for dates.", state))
	}

	return strings.Join(insights, " ")
}

func propertyInsights(value, amount decimal.Decimal, state string) string {
	var insights []string

	stateRate := lookupRate(propertyTaxRates, state, defaultPropertyRate).Mul(hundred)
	if stateRate.GreaterThan(nationalAvgPropertyRate.Mul(highFactor)) {
		insights = append(insights, fmt.Sprintf("%s has significantly higher property tax rates than the national average of %s%%.", state, nationalAvgPropertyRate.StringFixed(2)))
	} else if stateRate.LessThan(nationalAvgPropertyRate.Mul(lowFactor)) {
		insights = append(insights, fmt.Sprintf("%s has lower property tax rates than the national average of %s%%.", state, nationalAvgPropertyRate.StringFixed(2)))
	}

	if slices.Contains(homesteadStates, state) {
		insights = append(insights, fmt.Sprintf("%s offers homestead exemptions that may reduce your property tax burden if this is your primary residence.", state))
	}

	if amount.GreaterThan(value.Mul(d("0.015"))) {
		insights = append(insights, "Your property tax rate is relatively high. Consider checking if your property assessment is accurate and appeal if necessary.")
	}

	return strings.Join(insights, " ")
}
