package payroll

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// VietnamLocation is UTC+7. Vietnam has no DST, a fixed zone avoids depending on tzdata.
var VietnamLocation = time.FixedZone("ICT", 7*60*60)

// ToVietnamLocalDate converts a stored UTC timestamp to Vietnam wall-clock time.
// Every "is this invoice in month M" decision goes through here.
func ToVietnamLocalDate(t time.Time) time.Time {
	return t.In(VietnamLocation)
}

var periodRegex = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Period is a payroll month
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses "YYYY-MM"
func ParsePeriod(s string) (Period, error) {
	m := periodRegex.FindStringSubmatch(s)
	if m == nil {
		return Period{}, fmt.Errorf("%w: %q is not YYYY-MM", ErrInvalidPeriod, s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if year == 0 || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: %q is out of range", ErrInvalidPeriod, s)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// MonthBounds returns [start, end) of the Vietnam-local month as UTC instants,
// suitable for filtering a UTC created_at column.
func (p Period) MonthBounds() (time.Time, time.Time) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, VietnamLocation)
	end := start.AddDate(0, 1, 0)
	return start.UTC(), end.UTC()
}

// Contains reports whether a UTC timestamp falls in the period in Vietnam local time.
func (p Period) Contains(t time.Time) bool {
	local := ToVietnamLocalDate(t)
	return local.Year() == p.Year && local.Month() == p.Month
}

// ContainsDate is for plain calendar dates (overtime), no timezone shift applied.
func (p Period) ContainsDate(d time.Time) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}
