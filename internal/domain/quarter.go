package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quarter identifies a calendar trimester, e.g. 2022-T2.
type Quarter struct {
	Year int
	T    int // 1..4
}

// QuarterOf derives the trimester from a sale date.
// Months 1-3 map to T1, 4-6 to T2, 7-9 to T3, 10-12 to T4.
func QuarterOf(date time.Time) Quarter {
	return Quarter{
		Year: date.Year(),
		T:    (int(date.Month())-1)/3 + 1,
	}
}

// ParseQuarter parses the "YYYY-TN" label used by the quarterly index table.
func ParseQuarter(s string) (Quarter, error) {
	parts := strings.SplitN(s, "-T", 2)
	if len(parts) != 2 {
		return Quarter{}, fmt.Errorf("invalid quarter label %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Quarter{}, fmt.Errorf("invalid quarter label %q: %w", s, err)
	}
	t, err := strconv.Atoi(parts[1])
	if err != nil || t < 1 || t > 4 {
		return Quarter{}, fmt.Errorf("invalid quarter label %q", s)
	}
	return Quarter{Year: year, T: t}, nil
}

// String returns the "YYYY-TN" label.
func (q Quarter) String() string {
	return fmt.Sprintf("%d-T%d", q.Year, q.T)
}

// Before reports whether q precedes other in calendar order.
func (q Quarter) Before(other Quarter) bool {
	if q.Year != other.Year {
		return q.Year < other.Year
	}
	return q.T < other.T
}
