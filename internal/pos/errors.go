package pos

import (
	"errors"
	"fmt"
)

var (
	// ErrProductUnavailable covers a missing product as well as one that
	// exists but is inactive or not flagged for point-of-sale.
	ErrProductUnavailable = errors.New("product not available for sale")

	// ErrPriceOptionMissing means the product has no price option for the
	// requested sale mode (unit vs service).
	ErrPriceOptionMissing = errors.New("price option not found")

	// ErrProductNotFound is returned when an operation re-resolves a
	// product that has vanished from the catalog.
	ErrProductNotFound = errors.New("product not found")

	ErrEmptyCart           = errors.New("cart is empty")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyRefunded     = errors.New("transaction already refunded")
)

// InsufficientStockError reports the quantity actually available so the
// caller can surface it to the cashier.
type InsufficientStockError struct {
	ProductID       string
	AvailableUnits  int
	AvailableLiters float64
	Liters          bool
}

func (e *InsufficientStockError) Error() string {
	if e.Liters {
		return fmt.Sprintf("not enough liters available for %s: %.2fL left", e.ProductID, e.AvailableLiters)
	}
	return fmt.Sprintf("not enough stock available for %s: %d left", e.ProductID, e.AvailableUnits)
}

// CommitError wraps any failure raised while committing a transaction.
// Stock decrements applied to earlier line items are not rolled back;
// the cart is left intact so the cashier can retry.
type CommitError struct {
	ProductID string
	Err       error
}

func (e *CommitError) Error() string {
	if e.ProductID != "" {
		return fmt.Sprintf("commit transaction: product %s: %v", e.ProductID, e.Err)
	}
	return fmt.Sprintf("commit transaction: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
