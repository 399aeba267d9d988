package payroll

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2025-02")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2025, Month: time.February}, p)
	assert.Equal(t, "2025-02", p.String())

	for _, bad := range []string{"", "2025-2", "2025-13", "2025-00", "0000-01", "25-01", "2025/01", " 2025-01"} {
		_, err := ParsePeriod(bad)
		assert.True(t, errors.Is(err, ErrInvalidPeriod), bad)
	}
}

func TestPeriod_ContainsUsesVietnamTime(t *testing.T) {
	jan := Period{Year: 2025, Month: time.January}
	feb := Period{Year: 2025, Month: time.February}

	// 2025-02-01T00:30:00+07:00
	ts := time.Date(2025, 1, 31, 17, 30, 0, 0, time.UTC)
	assert.True(t, feb.Contains(ts))
	assert.False(t, jan.Contains(ts))

	// 2025-01-31T23:59:59+07:00
	ts = time.Date(2025, 1, 31, 16, 59, 59, 0, time.UTC)
	assert.True(t, jan.Contains(ts))
	assert.False(t, feb.Contains(ts))
}

func TestPeriod_MonthBounds(t *testing.T) {
	start, end := Period{Year: 2024, Month: time.December}.MonthBounds()

	assert.True(t, start.Equal(time.Date(2024, 11, 30, 17, 0, 0, 0, time.UTC)), start)
	assert.True(t, end.Equal(time.Date(2024, 12, 31, 17, 0, 0, 0, time.UTC)), end)
	assert.Equal(t, time.UTC, start.Location())
}

func TestPeriod_ContainsDate(t *testing.T) {
	feb := Period{Year: 2025, Month: time.February}
	assert.True(t, feb.ContainsDate(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)))
	assert.False(t, feb.ContainsDate(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
}

func TestComputePayrollRequest_Validate(t *testing.T) {
	req := ComputePayrollRequest{EmployeeID: 12, Period: "2025-02"}
	assert.NoError(t, req.Validate())

	req = ComputePayrollRequest{EmployeeID: 0, Period: "2025-13"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "employee_id")
	assert.Contains(t, err.Error(), "period")
}
