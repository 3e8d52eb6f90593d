package usecase

import "github.com/shopspring/decimal"

// APIでは金額を小数2桁の文字列で返す
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func sumLines[T interface{ LineTotal() decimal.Decimal }](lines []T) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func decimalFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
