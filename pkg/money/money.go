package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToCents converts a major-unit amount into the gateway's minor-unit integer
// representation, rounding half up to the nearest minor unit.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromCents converts a minor-unit amount back into major units.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// FormatCents renders a minor-unit amount as a two-decimal major-unit string,
// the format the payout network expects.
func FormatCents(cents int64) string {
	return FromCents(cents).StringFixed(2)
}
