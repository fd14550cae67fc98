package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MixinNetwork/go-number"
)

// parseAmount reads a decimal amount and scales it by 10^precision into the
// integer units that get committed.
func parseAmount(s string, precision int) (uint64, error) {
	if precision < 0 || precision > 19 {
		return 0, fmt.Errorf("parseAmount invalid precision %d", precision)
	}
	amount := number.FromString(strings.TrimSpace(s))
	if amount.Cmp(number.Zero()) < 0 {
		return 0, fmt.Errorf("parseAmount negative amount %s", s)
	}

	unit := number.FromString("1" + strings.Repeat("0", precision))
	scaled := amount.Mul(unit)
	units := scaled.RoundFloor(0)
	if units.Cmp(scaled) != 0 {
		return 0, fmt.Errorf("parseAmount %s has more than %d decimal places", s, precision)
	}

	v, err := strconv.ParseUint(units.Persist(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parseAmount %s out of range: %v", s, err)
	}
	return v, nil
}
