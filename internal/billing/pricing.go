package billing

import (
	"math"
	"strconv"
	"strings"
)

// Round2 rounds half-up to two decimal places. Applied per item before
// summation so fixtures always produce identical cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseDiscountPercent extracts the percentage from a discount string such
// as "5%". An absent or unparseable discount yields 0.
func ParseDiscountPercent(discount string) float64 {
	d := strings.TrimSpace(discount)
	if !strings.HasSuffix(d, "%") {
		return 0
	}
	percent, err := strconv.ParseFloat(strings.TrimSuffix(d, "%"), 64)
	if err != nil {
		return 0
	}
	return percent
}

// FinalPrice computes the discounted unit price, rounded to cents.
func FinalPrice(originalPrice float64, discount string) float64 {
	percent := ParseDiscountPercent(discount)
	return Round2(originalPrice - originalPrice*percent/100)
}

// Total sums the already-rounded final prices weighted by quantity.
func Total(items []LineItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.FinalPrice * float64(item.Qty)
	}
	return Round2(sum)
}
