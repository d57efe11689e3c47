package repositories

import "github.com/shopspring/decimal"

// StockScale is the number of decimal places stock levels are kept to.
const StockScale = 6

// takeStock returns stock minus quantity, or false when stock cannot cover it.
func takeStock(stock, quantity float64) (float64, bool) {
	have, want := decimal.NewFromFloat(stock), decimal.NewFromFloat(quantity)
	if have.LessThan(want) {
		return stock, false
	}
	return have.Sub(want).Round(StockScale).InexactFloat64(), true
}

func putStock(stock, quantity float64) float64 {
	return decimal.NewFromFloat(stock).Add(decimal.NewFromFloat(quantity)).Round(StockScale).InexactFloat64()
}
