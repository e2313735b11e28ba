package cart

import (
	"math"
	"strconv"
	"strings"
)

// ParseQuantity reads the leading integer of raw, the way a lenient form
// field does. Input without one, or below 1, becomes 1.
func ParseQuantity(raw string) int32 {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 1
	}
	quantity, err := strconv.ParseInt(raw[:end], 10, 64)
	if err != nil {
		if strings.HasPrefix(raw, "-") {
			return 1
		}
		return math.MaxInt32
	}
	if quantity < 1 {
		return 1
	}
	if quantity > math.MaxInt32 {
		return math.MaxInt32
	}
	return int32(quantity)
}
