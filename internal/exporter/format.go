package exporter

import (
	"fmt"
	"strconv"
)

// formatFloat formats a float with the fewest digits that round-trip, so
// ratios keep their full precision.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatValue renders a frame cell. Missing values become empty fields.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return formatInt(x)
	case float64:
		return formatFloat(x)
	default:
		return fmt.Sprint(x)
	}
}
