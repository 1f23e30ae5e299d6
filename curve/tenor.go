package curve

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTenor converts tenor strings like "1W", "3M", "10Y" to year fractions.
// A bare number is read as years.
func ParseTenor(tenor string) (float64, error) {
	t := strings.TrimSpace(strings.ToUpper(tenor))
	if t == "" {
		return 0, fmt.Errorf("ParseTenor: empty tenor")
	}

	parseNum := func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("ParseTenor: %q is not a number", s)
		}
		return v, nil
	}

	switch {
	case strings.HasSuffix(t, "W"):
		n, err := parseNum(strings.TrimSuffix(t, "W"))
		if err != nil {
			return 0, err
		}
		return n * 7.0 / 365.0, nil
	case strings.HasSuffix(t, "M"):
		n, err := parseNum(strings.TrimSuffix(t, "M"))
		if err != nil {
			return 0, err
		}
		return n / 12.0, nil
	case strings.HasSuffix(t, "Y"):
		return parseNum(strings.TrimSuffix(t, "Y"))
	case strings.HasSuffix(t, "D"):
		n, err := parseNum(strings.TrimSuffix(t, "D"))
		if err != nil {
			return 0, err
		}
		return n / 365.0, nil
	default:
		return parseNum(t)
	}
}
