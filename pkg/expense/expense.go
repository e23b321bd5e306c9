package expense

import (
	"errors"
	"fmt"
	"time"

	"github.com/persely/persely/pkg/category"
	"github.com/shopspring/decimal"
)

// DateFormat is the storage and wire format of expense dates. Expenses carry
// a calendar date only, no time component.
const DateFormat = "2006-01-02"

var (
	ErrValidation = errors.New("invalid expense")
	ErrNotFound   = errors.New("expense not found")
)

// Expense is a single purchase. An expense with an empty PrimaryCategory is
// "unsorted": it sits in the Item Box waiting to be assigned to a category.
type Expense struct {
	Id        int
	Uid       string
	Name      string
	FullPrice decimal.Decimal
	Date      time.Time
	// PrimaryCategory receives CategoryMatch percent of FullPrice. Empty
	// means the expense is unsorted.
	PrimaryCategory string
	// CategoryMatch is an integer percentage in [0, 100]. The secondary
	// share is always derived as 100 - CategoryMatch, never stored.
	CategoryMatch     int
	SecondaryCategory string
	IsRecurring       bool
	// CartUid and CartName are set only when the expense was created by
	// sorting a shopping cart line item.
	CartUid   string
	CartName  string
	CreatedAt time.Time
}

func (e Expense) IsSorted() bool {
	return e.PrimaryCategory != ""
}

// PrimarySplit is the part of FullPrice attributed to the primary category.
func (e Expense) PrimarySplit() decimal.Decimal {
	return SplitPrice(e.FullPrice, e.CategoryMatch)
}

// SecondarySplit is the part of FullPrice attributed to the secondary
// category. Zero when no secondary category is set; that share is simply
// unattributed, not double-counted.
func (e Expense) SecondarySplit() decimal.Decimal {
	if e.SecondaryCategory == "" {
		return decimal.Zero
	}
	return SplitPrice(e.FullPrice, SecondaryPercent(e.CategoryMatch))
}

// SplitPrice returns fullPrice * matchPercent / 100. The calculator has no
// notion of which category is "its own": callers pass the primary match for
// the primary share and the derived secondary percent for the secondary one.
func SplitPrice(fullPrice decimal.Decimal, matchPercent int) decimal.Decimal {
	return fullPrice.Mul(decimal.NewFromInt(int64(matchPercent))).Div(decimal.NewFromInt(100))
}

// SecondaryPercent derives the secondary category's share from the primary
// match percentage.
func SecondaryPercent(matchPercent int) int {
	return 100 - matchPercent
}

// ValidateSplit checks the category split fields of a sorted expense.
func ValidateSplit(primary string, match int, secondary string) error {
	if !category.IsValid(primary) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, primary)
	}
	if match < 0 || match > 100 {
		return fmt.Errorf("%w: category match %d%% out of range", ErrValidation, match)
	}
	if secondary != "" {
		if !category.IsValid(secondary) {
			return fmt.Errorf("%w: unknown secondary category %q", ErrValidation, secondary)
		}
		if secondary == primary {
			return fmt.Errorf("%w: secondary category must differ from primary", ErrValidation)
		}
	}
	return nil
}

func validateBase(name string, fullPrice decimal.Decimal) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !fullPrice.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	return nil
}
