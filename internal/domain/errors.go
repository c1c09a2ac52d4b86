// Package domain declares the closed set of business errors raised by the
// workflows. Each error is a struct carrying the data a caller needs to
// render a specific message or branch with errors.As; workflows never return
// bare strings for business failures.
package domain

import "fmt"

// ProductNotFoundError: referenced SKU or id does not exist.
type ProductNotFoundError struct {
	Ref string // SKU or id, whichever the caller used
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.Ref)
}

// DuplicateSKUError: create/update collides with an existing SKU.
type DuplicateSKUError struct {
	SKU string
}

func (e *DuplicateSKUError) Error() string {
	return fmt.Sprintf("a product with SKU %s already exists", e.SKU)
}

// ProductInUseError: delete rejected because sale items or ledger entries
// still reference the product.
type ProductInUseError struct {
	SKU string
}

func (e *ProductInUseError) Error() string {
	return fmt.Sprintf("product %s is referenced by sales or stock history and cannot be deleted", e.SKU)
}

// EmptySaleError: the cart has zero lines.
type EmptySaleError struct{}

func (e *EmptySaleError) Error() string {
	return "cannot process a sale without items"
}

// InsufficientStockError: a cart line requests more than is available.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// CustomerNotFoundError: referenced customer id does not exist.
type CustomerNotFoundError struct {
	ID string
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer not found: %s", e.ID)
}

// CreditLimitExceededError: the projected debt after this sale exceeds the
// customer's credit limit.
type CreditLimitExceededError struct {
	CustomerName string
	Limit        int64
	Attempted    int64 // projected debt (current debt + sale total), cents
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded for %q: limit %d, attempted %d",
		e.CustomerName, e.Limit, e.Attempted)
}

// SaleNotFoundError: referenced sale id or number does not exist.
type SaleNotFoundError struct {
	Ref string
}

func (e *SaleNotFoundError) Error() string {
	return fmt.Sprintf("sale not found: %s", e.Ref)
}

// SaleAlreadyCancelledError: cancellation attempted on a cancelled sale.
// Re-cancellation is an error, not a no-op.
type SaleAlreadyCancelledError struct {
	SaleNumber string
}

func (e *SaleAlreadyCancelledError) Error() string {
	return fmt.Sprintf("sale %s is already cancelled", e.SaleNumber)
}

// InvalidAdjustmentError: a manual stock posting was rejected, either for a
// zero quantity or because the result would drive stock negative.
type InvalidAdjustmentError struct {
	Reason       string
	CurrentStock int
	Requested    int
}

func (e *InvalidAdjustmentError) Error() string {
	return fmt.Sprintf("invalid stock adjustment: %s (current stock %d, requested %d)",
		e.Reason, e.CurrentStock, e.Requested)
}

// ValidationError: structural input validation failed (missing field, bad
// enum value, malformed SKU, non-positive quantity).
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field %q failed on %q", e.Field, e.Tag)
}

// ConversationNotFoundError: assistant command referenced a missing conversation.
type ConversationNotFoundError struct {
	ID string
}

func (e *ConversationNotFoundError) Error() string {
	return fmt.Sprintf("conversation not found: %s", e.ID)
}
