package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToString converts various types to string. Nil becomes "" and whole floats
// (as decoded from JSON numbers) lose their fraction, so 603.0 becomes "603".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// YearFromDate extracts the year of an ISO date ("1999-03-30", "1999-03-30T00:00:00Z")
// or a bare year. It returns 0 when there is none.
func YearFromDate(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
