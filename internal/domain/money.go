package domain

import (
	"fmt"
	"math/big"
	"regexp"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places between the chain's
// integer minor units and the display denomination (wei semantics).
const MinorUnitExponent = 18

var minorUnitsPattern = regexp.MustCompile(`^[0-9]+$`)

// ValidMinorUnits reports whether s is a non-negative base-10 integer amount
func ValidMinorUnits(s string) bool {
	return minorUnitsPattern.MatchString(s)
}

// DisplayAmount converts an integer minor-units amount into its display
// decimal. The result is computed once at write time and is presentational
// only; comparisons and arithmetic always use the minor-units value.
func DisplayAmount(minorUnits string) (decimal.Decimal, error) {
	if !ValidMinorUnits(minorUnits) {
		return decimal.Zero, fmt.Errorf("invalid minor-units amount: %q", minorUnits)
	}

	units, ok := new(big.Int).SetString(minorUnits, 10)
	if !ok {
		return decimal.Zero, fmt.Errorf("invalid minor-units amount: %q", minorUnits)
	}

	return decimal.NewFromBigInt(units, -MinorUnitExponent), nil
}

// SplitMinorUnits divides a minor-units total evenly across n shares,
// assigning the division remainder to the first share so the parts always
// sum back to the total
func SplitMinorUnits(total string, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cannot split across %d shares", n)
	}

	t, ok := new(big.Int).SetString(total, 10)
	if !ok {
		return nil, fmt.Errorf("invalid minor-units amount: %q", total)
	}

	q, r := new(big.Int).DivMod(t, big.NewInt(int64(n)), new(big.Int))

	shares := make([]string, n)
	shares[0] = new(big.Int).Add(q, r).String()
	for i := 1; i < n; i++ {
		shares[i] = q.String()
	}

	return shares, nil
}

// CompareMinorUnits compares two integer minor-units amounts numerically,
// returning -1, 0 or 1
func CompareMinorUnits(a, b string) (int, error) {
	x, ok := new(big.Int).SetString(a, 10)
	if !ok {
		return 0, fmt.Errorf("invalid minor-units amount: %q", a)
	}
	y, ok := new(big.Int).SetString(b, 10)
	if !ok {
		return 0, fmt.Errorf("invalid minor-units amount: %q", b)
	}
	return x.Cmp(y), nil
}

// SumMinorUnits adds integer minor-units amounts without precision loss
func SumMinorUnits(amounts ...string) (string, error) {
	total := new(big.Int)
	for _, a := range amounts {
		units, ok := new(big.Int).SetString(a, 10)
		if !ok {
			return "", fmt.Errorf("invalid minor-units amount: %q", a)
		}
		total.Add(total, units)
	}
	return total.String(), nil
}
