package period

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the storage and wire format of period boundary dates.
const DateFormat = "2006-01-02"

var (
	ErrNotFound = errors.New("salary period not found")
	// ErrOutOfOrder is returned when a new period would not extend the
	// chain, i.e. its start date is not after the latest existing start.
	ErrOutOfOrder = errors.New("salary period start must be after the latest period")
)

// SalaryPeriod is a user-defined reporting window, an alternative to
// calendar-month filtering. Periods form a non-overlapping chain: at most
// one is open (EndDate nil), and it is always the one with the latest start.
type SalaryPeriod struct {
	Id        int
	Uid       string
	Name      string
	StartDate time.Time
	// EndDate nil means the period is open and extends to "now". It is
	// populated automatically when the next period is created.
	EndDate *time.Time
	// MonthlyBudget is copied from the effective budget at creation time;
	// later changes to the default do not affect it.
	MonthlyBudget decimal.Decimal
	CreatedAt     time.Time
}

// IsOpen reports whether the period has no end date yet.
func (p SalaryPeriod) IsOpen() bool {
	return p.EndDate == nil
}

// Contains reports whether date falls inside the period, both bounds
// inclusive. An open period ends at now.
func (p SalaryPeriod) Contains(date time.Time, now time.Time) bool {
	if date.Before(p.StartDate) {
		return false
	}
	end := now
	if p.EndDate != nil {
		end = *p.EndDate
	}
	return !date.After(end)
}

// PeriodName derives the display name of a period starting at startDate,
// e.g. "2024. January - February period".
func PeriodName(startDate time.Time) string {
	year, month, _ := startDate.Date()
	next := time.Date(year, month, 1, 0, 0, 0, 0, startDate.Location()).AddDate(0, 1, 0)
	return fmt.Sprintf("%d. %s - %s period", year, month.String(), next.Month().String())
}
