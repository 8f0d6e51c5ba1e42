// Package payout computes the distance-based courier payout. It holds no
// state; every function is safe to call from anywhere.
package payout

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jask/opsconsole/internal/apperr"
)

// Rates parameterise the payout formula
//
//	amount = Base + PerKm * max(0, distance - FreeRadiusKm)
type Rates struct {
	Base         decimal.Decimal
	PerKm        decimal.Decimal
	FreeRadiusKm decimal.Decimal
}

// DefaultRates: base 20, 7 per km beyond the first km.
var DefaultRates = Rates{
	Base:         decimal.NewFromInt(20),
	PerKm:        decimal.NewFromInt(7),
	FreeRadiusKm: decimal.NewFromInt(1),
}

// NewRates builds rates from configuration values.
func NewRates(base, perKm, freeRadiusKm float64) (Rates, error) {
	for name, v := range map[string]float64{"base": base, "per km": perKm, "free radius": freeRadiusKm} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return Rates{}, apperr.InvalidInput("payout %s %v", name, v)
		}
	}
	return Rates{
		Base:         decimal.NewFromFloat(base),
		PerKm:        decimal.NewFromFloat(perKm),
		FreeRadiusKm: decimal.NewFromFloat(freeRadiusKm),
	}, nil
}

// Quote pairs a distance with its payout.
type Quote struct {
	DistanceKm float64
	Amount     decimal.Decimal
}

// Amount returns the payout for distanceKm under DefaultRates.
func Amount(distanceKm float64) (decimal.Decimal, error) {
	return DefaultRates.Amount(distanceKm)
}

// Amount returns the payout for distanceKm. Negative or non-finite
// distances fail with InvalidInput.
func (r Rates) Amount(distanceKm float64) (decimal.Decimal, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return decimal.Zero, apperr.InvalidInput("distance must be finite")
	}
	if distanceKm < 0 {
		return decimal.Zero, apperr.InvalidInput("distance %v km is negative", distanceKm)
	}
	extra := decimal.NewFromFloat(distanceKm).Sub(r.FreeRadiusKm)
	if extra.IsNegative() {
		extra = decimal.Zero
	}
	return r.Base.Add(r.PerKm.Mul(extra)), nil
}

// Quote computes the payout for distanceKm.
func (r Rates) Quote(distanceKm float64) (Quote, error) {
	amount, err := r.Amount(distanceKm)
	if err != nil {
		return Quote{}, err
	}
	return Quote{DistanceKm: distanceKm, Amount: amount}, nil
}

var distancePattern = regexp.MustCompile(`^\d*(?:\.\d*)?$`)

// ParseDistance accepts the calculator's input form: digits with an
// optional decimal point, e.g. "5", "5.2", ".5" or "5.".
func ParseDistance(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "." || !distancePattern.MatchString(raw) {
		return 0, apperr.InvalidInput("distance %q is not a number", raw)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.InvalidInput("distance %q: %v", raw, err)
	}
	return v, nil
}

// Format renders an amount for display with two decimals.
func Format(symbol string, amount decimal.Decimal) string {
	if symbol == "" {
		return amount.StringFixed(2)
	}
	return symbol + " " + amount.StringFixed(2)
}
