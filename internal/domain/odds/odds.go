package odds

import (
	"fmt"
	"math"
)

const (
	MinAmerican = -10000
	MaxAmerican = 10000
)

// IsValidAmerican reports whether american is a usable American price.
// Zero is not a price, and anything outside [-10000, 10000] is treated as
// feed garbage rather than a longshot.
func IsValidAmerican(american int) bool {
	if american == 0 {
		return false
	}
	return american >= MinAmerican && american <= MaxAmerican
}

// AmericanToDecimal converts an American price to decimal odds
// (stake multiplier including the returned stake).
func AmericanToDecimal(american int) (float64, error) {
	if !IsValidAmerican(american) {
		return 0, fmt.Errorf("invalid american odds %d", american)
	}
	if american > 0 {
		return float64(american)/100.0 + 1.0, nil
	}
	return 100.0/float64(-american) + 1.0, nil
}

// DecimalToAmerican converts decimal odds back to the nearest American price.
func DecimalToAmerican(dec float64) (int, error) {
	if dec <= 1 || math.IsNaN(dec) || math.IsInf(dec, 0) {
		return 0, fmt.Errorf("invalid decimal odds %v", dec)
	}
	if dec >= 2 {
		return int(math.Round((dec - 1) * 100)), nil
	}
	return int(math.Round(-100 / (dec - 1))), nil
}

// Parlay multiplies leg decimal odds into the combined parlay price.
// A single leg returns that leg unchanged.
func Parlay(decimals ...float64) (float64, error) {
	if len(decimals) == 0 {
		return 0, fmt.Errorf("parlay requires at least one leg")
	}

	combined := 1.0
	for i, dec := range decimals {
		if dec <= 0 || math.IsNaN(dec) || math.IsInf(dec, 0) {
			return 0, fmt.Errorf("leg %d has invalid decimal odds %v", i, dec)
		}
		combined *= dec
	}
	return combined, nil
}
