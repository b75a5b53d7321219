package shared

import "github.com/shopspring/decimal"

// MoneyScale is the number of fraction digits kept for monetary amounts
const MoneyScale = 2

// MaxMoney is the largest amount a NUMERIC(14,2) column can hold
var MaxMoney = decimal.RequireFromString("999999999999.99")

// MoneyInRange reports whether d fits a stored monetary column
func MoneyInRange(d decimal.Decimal) bool {
	return d.Abs().LessThanOrEqual(MaxMoney)
}

// RoundMoney rounds an amount half away from zero to MoneyScale digits
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// SumMoney adds amounts and rounds the result
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return RoundMoney(total)
}
