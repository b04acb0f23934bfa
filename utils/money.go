package utils

import (
	"fmt"
	"math"
	"strconv"
)

// FormatCurrency renders an amount in reais with two decimals, e.g. "R$ 50.00".
func FormatCurrency(amount float64) string {
	if amount == 0 || math.IsNaN(amount) {
		amount = 0
	}
	return fmt.Sprintf("R$ %.2f", amount)
}

// FormatQuantity drops trailing zeros: 2 -> "2", 1.5 -> "1.5".
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
