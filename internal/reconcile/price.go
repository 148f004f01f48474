package reconcile

import (
	"errors"
	"strconv"
	"strings"
)

var errBadPrice = errors.New("not a valid amount")

// parsePrice parses a feed price value. Feeds carry prices as "123.00 AED";
// the leading token is the amount and the currency suffix is ignored.
// Negative amounts are rejected.
func parsePrice(raw string) (float64, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, errBadPrice
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || v < 0 {
		return 0, errBadPrice
	}
	return v, nil
}
