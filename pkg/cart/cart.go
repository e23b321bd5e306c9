package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the storage and wire format of cart dates.
const DateFormat = "2006-01-02"

var (
	ErrValidation = errors.New("invalid cart")
	ErrNotFound   = errors.New("cart not found")
)

// Cart is a shopping trip: one receipt with a recorded total and the line
// items bought. TotalPrice is the amount entered at the till and is never
// recomputed from the items.
type Cart struct {
	Id         int
	Uid        string
	Name       string
	TotalPrice decimal.Decimal
	Date       time.Time
	CreatedAt  time.Time
	Items      []CartItem
}

// CartItem is a single line of a cart. Sorting a line item assigns its
// category split and publishes it as a standalone expense; the split fields
// stay on the item so the cart view can show what has been sorted already.
type CartItem struct {
	Id                int
	Uid               string
	Name              string
	Price             decimal.Decimal
	Position          int
	PrimaryCategory   string
	CategoryMatch     int
	SecondaryCategory string
}

func (i CartItem) IsSorted() bool {
	return i.PrimaryCategory != ""
}

func validateCart(cart Cart) error {
	if cart.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !cart.TotalPrice.IsPositive() {
		return fmt.Errorf("%w: total price must be positive", ErrValidation)
	}
	if len(cart.Items) == 0 {
		return fmt.Errorf("%w: cart needs at least one item", ErrValidation)
	}
	for _, item := range cart.Items {
		if err := validateItem(item); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(item CartItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: item name is required", ErrValidation)
	}
	if !item.Price.IsPositive() {
		return fmt.Errorf("%w: item price must be positive", ErrValidation)
	}
	return nil
}
