package tax

import "github.com/shopspring/decimal"

// bracket taxes income up to UpTo at Rate. A zero UpTo marks the open top bracket.
type bracket struct {
	UpTo decimal.Decimal
	Rate decimal.Decimal
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func brackets(rows ...[2]string) []bracket {
	out := make([]bracket, 0, len(rows))
	for _, r := range rows {
		b := bracket{Rate: d(r[1])}
		if r[0] != "" {
			b.UpTo = d(r[0])
		}
		out = append(out, b)
	}
	return out
}

// Simplified federal brackets (2022 thresholds).
var federalBrackets = map[FilingStatus][]bracket{
	Single: brackets(
		[2]string{"10275", "0.10"},
		[2]string{"41775", "0.12"},
		[2]string{"89075", "0.22"},
		[2]string{"170050", "0.24"},
		[2]string{"215950", "0.32"},
		[2]string{"539900", "0.35"},
		[2]string{"", "0.37"},
	),
	MarriedJoint: brackets(
		[2]string{"20550", "0.10"},
		[2]string{"83550", "0.12"},
		[2]string{"178150", "0.22"},
		[2]string{"340100", "0.24"},
		[2]string{"431900", "0.32"},
		[2]string{"647850", "0.35"},
		[2]string{"", "0.37"},
	),
	MarriedSeparate: brackets(
		[2]string{"10275", "0.10"},
		[2]string{"41775", "0.12"},
		[2]string{"89075", "0.22"},
		[2]string{"170050", "0.24"},
		[2]string{"215950", "0.32"},
		[2]string{"323925", "0.35"},
		[2]string{"", "0.37"},
	),
	HeadOfHousehold: brackets(
		[2]string{"14650", "0.10"},
		[2]string{"55900", "0.12"},
		[2]string{"89050", "0.22"},
		[2]string{"170050", "0.24"},
		[2]string{"215950", "0.32"},
		[2]string{"539900", "0.35"},
		[2]string{"", "0.37"},
	),
}

var standardDeduction = map[FilingStatus]decimal.Decimal{
	Single:          d("12950"),
	MarriedJoint:    d("25900"),
	MarriedSeparate: d("12950"),
	HeadOfHousehold: d("19400"),
}

var stateIncomeTaxRates = map[string]decimal.Decimal{
	"CA": d("0.093"),
	"NY": d("0.085"),
	"TX": d("0"),
	"FL": d("0"),
	"IL": d("0.0495"),
	"WA": d("0"),
	"NV": d("0"),
	"AZ": d("0.045"),
	"CO": d("0.0455"),
	"GA": d("0.0575"),
	"MA": d("0.05"),
	"MI": d("0.0425"),
	"OH": d("0.0399"),
	"PA": d("0.0307"),
	"VA": d("0.0575"),
}

var salesTaxRates = map[string]decimal.Decimal{
	"CA": d("0.0725"),
	"NY": d("0.045"),
	"TX": d("0.0625"),
	"FL": d("0.06"),
	"IL": d("0.0625"),
	"WA": d("0.065"),
	"NV": d("0.0685"),
	"AZ": d("0.056"),
	"CO": d("0.029"),
	"GA": d("0.04"),
	"MA": d("0.0625"),
	"MI": d("0.06"),
	"OH": d("0.0575"),
	"PA": d("0.06"),
	"VA": d("0.053"),
}

var propertyTaxRates = map[string]decimal.Decimal{
	"CA": d("0.0077"),
	"NY": d("0.0172"),
	"TX": d("0.0181"),
	"FL": d("0.0098"),
	"IL": d("0.0227"),
	"WA": d("0.0103"),
	"NV": d("0.0069"),
	"AZ": d("0.0077"),
	"CO": d("0.0055"),
	"GA": d("0.0092"),
	"MA": d("0.0123"),
	"MI": d("0.0158"),
	"OH": d("0.0157"),
	"PA": d("0.0158"),
	"VA": d("0.0080"),
}

// Fallbacks for states missing from the tables.
var (
	defaultStateIncomeRate = d("0.05")
	defaultSalesRate       = d("0.06")
	defaultPropertyRate    = d("0.01")
)

var (
	socialSecurityRate     = d("0.062")
	socialSecurityWageBase = d("147000")
	medicareRate           = d("0.0145")
	essentialSalesFactor   = d("0.5")
)

// National averages, in percent, used for insight comparisons.
var (
	nationalAvgEffectiveRate = d("14.6")
	nationalAvgSalesRate     = d("6.57")
	nationalAvgPropertyRate  = d("1.07")
)

var (
	taxFreeShoppingStates = []string{"TX", "FL", "MA", "CT"}
	homesteadStates       = []string{"FL", "TX", "GA", "SC"}
)

var hundred = decimal.NewFromInt(100)
