// Package pos implements the point-of-sale transaction workflow: cart
// state, stock validation, and transaction commit. A Workflow instance
// owns the cart for one terminal session and talks to the product
// catalog and customer directory through injected collaborators.
package pos

import (
	"context"
	"sync"
	"time"

	"lubriwash/backend/internal/domain"
	"lubriwash/backend/internal/xid"
)

// Catalog is the product collaborator. Find reports absence through the
// bool; the error is reserved for infrastructure failures.
type Catalog interface {
	Find(ctx context.Context, productID string) (domain.Product, bool, error)
	Apply(ctx context.Context, product domain.Product) error
}

// CustomerDirectory is the read-only customer collaborator.
type CustomerDirectory interface {
	Find(ctx context.Context, customerID string) (domain.Customer, bool, error)
}

// Draft carries the checkout parameters the cashier supplies on top of
// the cart contents. Discount bounds and card voucher presence are the
// caller's responsibility to validate; Commit applies the draft as-is.
type Draft struct {
	DiscountCents int64
	Payment       domain.PaymentDetails
	CustomerID    string
}

type Workflow struct {
	catalog   Catalog
	customers CustomerDirectory

	mu           sync.Mutex
	cart         []domain.CartItem
	transactions []domain.Transaction

	now        func() time.Time
	newID      func(prefix string) string
	newReceipt func(now time.Time) string
}

type Option func(*Workflow)

// WithClock fixes the workflow's notion of time, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithIDSource overrides transaction id and receipt number generation.
func WithIDSource(newID func(string) string, newReceipt func(time.Time) string) Option {
	return func(w *Workflow) {
		w.newID = newID
		w.newReceipt = newReceipt
	}
}

func New(catalog Catalog, customers CustomerDirectory, opts ...Option) *Workflow {
	w := &Workflow{
		catalog:    catalog,
		customers:  customers,
		now:        time.Now,
		newID:      xid.New,
		newReceipt: xid.Receipt,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// AddToCart validates the product and its stock, then merges the item
// into the cart. Adding an existing (product, service-flag) pair sums
// the quantity but replaces the service liters with the latest value.
func (w *Workflow) AddToCart(ctx context.Context, req domain.AddToCartRequest) error {
	product, ok, err := w.catalog.Find(ctx, req.ProductID)
	if err != nil {
		return err
	}
	if !ok || !product.AvailableForPOS || product.Status != domain.StatusActive {
		return ErrProductUnavailable
	}

	priceKind := domain.PriceKindUnit
	if req.IsService {
		priceKind = domain.PriceKindService
	}
	option, ok := product.PriceFor(priceKind)
	if !ok {
		return ErrPriceOptionMissing
	}

	if product.StockUnit.Kind == domain.StockKindBarrel && req.IsService && req.ServiceLiters > 0 {
		if req.ServiceLiters > product.StockUnit.PartialLiters {
			return &InsufficientStockError{
				ProductID:       product.ID,
				AvailableLiters: product.StockUnit.PartialLiters,
				Liters:          true,
			}
		}
	} else if req.Quantity > product.StockUnit.FullUnits {
		return &InsufficientStockError{
			ProductID:      product.ID,
			AvailableUnits: product.StockUnit.FullUnits,
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for i, item := range w.cart {
		if item.ProductID == req.ProductID && item.IsService == req.IsService {
			w.cart[i].Quantity += req.Quantity
			w.cart[i].ServiceLiters = req.ServiceLiters
			return nil
		}
	}
	w.cart = append(w.cart, domain.CartItem{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		UnitPriceCents: option.PriceCents,
		IsService:      req.IsService,
		ServiceLiters:  req.ServiceLiters,
	})
	return nil
}

// RemoveFromCart drops every cart entry for the product, service and
// unit variants alike. Removing an absent product is a no-op.
func (w *Workflow) RemoveFromCart(productID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.cart[:0]
	for _, item := range w.cart {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	w.cart = kept
}

// UpdateQuantity overwrites the quantity of every cart entry for the
// product. The stock check only considers full units; service liters
// are not re-validated here.
func (w *Workflow) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	product, ok, err := w.catalog.Find(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	if quantity > product.StockUnit.FullUnits {
		return &InsufficientStockError{
			ProductID:      product.ID,
			AvailableUnits: product.StockUnit.FullUnits,
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for i, item := range w.cart {
		if item.ProductID == productID {
			w.cart[i].Quantity = quantity
		}
	}
	return nil
}

func (w *Workflow) ClearCart() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cart = nil
}

func (w *Workflow) Cart() []domain.CartItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.CartItem(nil), w.cart...)
}

// CartTotal sums unit price times quantity over the cart.
func (w *Workflow) CartTotal() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cartTotalLocked(w.cart)
}

func cartTotalLocked(cart []domain.CartItem) int64 {
	var total int64
	for _, item := range cart {
		total += item.UnitPriceCents * int64(item.Quantity)
	}
	return total
}

// Commit finalizes the current cart into an immutable transaction:
// stamps id, receipt number, and timestamp, decrements stock for every
// line item, appends the transaction to the log, and clears the cart.
//
// Stock updates are applied one product at a time. A failure part way
// through leaves earlier decrements in place with no rollback; the cart
// is only cleared on full success. Decrements floor at zero and do not
// re-validate sufficiency — that happened at add-to-cart time.
func (w *Workflow) Commit(ctx context.Context, draft Draft) (domain.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.cart) == 0 {
		return domain.Transaction{}, ErrEmptyCart
	}

	now := w.now()
	items := make([]domain.TransactionItem, 0, len(w.cart))
	for _, item := range w.cart {
		items = append(items, domain.TransactionItem{
			CartItem:      item,
			SubtotalCents: item.UnitPriceCents * int64(item.Quantity),
		})
	}
	total := cartTotalLocked(w.cart)

	tx := domain.Transaction{
		ID:              w.newID("txn"),
		ReceiptNumber:   w.newReceipt(now),
		CreatedAt:       now,
		Items:           items,
		TotalCents:      total,
		DiscountCents:   draft.DiscountCents,
		FinalTotalCents: total - draft.DiscountCents,
		Payment:         draft.Payment,
		CustomerID:      draft.CustomerID,
		Status:          domain.TxStatusCompleted,
	}

	for _, item := range items {
		product, ok, err := w.catalog.Find(ctx, item.ProductID)
		if err != nil {
			return domain.Transaction{}, &CommitError{ProductID: item.ProductID, Err: err}
		}
		if !ok {
			return domain.Transaction{}, &CommitError{ProductID: item.ProductID, Err: ErrProductNotFound}
		}
		product.StockUnit = decrementStock(product.StockUnit, item.CartItem)
		if err := w.catalog.Apply(ctx, product); err != nil {
			return domain.Transaction{}, &CommitError{ProductID: item.ProductID, Err: err}
		}
	}

	w.transactions = append(w.transactions, tx)
	w.cart = nil
	return tx, nil
}

func decrementStock(stock domain.StockUnit, item domain.CartItem) domain.StockUnit {
	if stock.Kind == domain.StockKindBarrel && item.IsService && item.ServiceLiters > 0 {
		stock.PartialLiters -= item.ServiceLiters
		if stock.PartialLiters < 0 {
			stock.PartialLiters = 0
		}
		return stock
	}
	stock.FullUnits -= item.Quantity
	if stock.FullUnits < 0 {
		stock.FullUnits = 0
	}
	return stock
}

func (w *Workflow) Transactions() []domain.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Transaction(nil), w.transactions...)
}

func (w *Workflow) Transaction(id string) (domain.Transaction, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, tx := range w.transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return domain.Transaction{}, false
}

// MarkRefunded transitions a completed transaction to refunded. The
// transition is terminal; stock is not restored.
func (w *Workflow) MarkRefunded(id string) (domain.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, tx := range w.transactions {
		if tx.ID != id {
			continue
		}
		if tx.Status == domain.TxStatusRefunded {
			return domain.Transaction{}, ErrAlreadyRefunded
		}
		w.transactions[i].Status = domain.TxStatusRefunded
		return w.transactions[i], nil
	}
	return domain.Transaction{}, ErrTransactionNotFound
}

// Customer resolves a customer through the injected directory.
func (w *Workflow) Customer(ctx context.Context, customerID string) (domain.Customer, bool, error) {
	if customerID == "" || w.customers == nil {
		return domain.Customer{}, false, nil
	}
	return w.customers.Find(ctx, customerID)
}

// State returns a copy of the cart and transaction log for persistence.
func (w *Workflow) State() ([]domain.CartItem, []domain.Transaction) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.CartItem(nil), w.cart...), append([]domain.Transaction(nil), w.transactions...)
}

// Restore replaces the cart and transaction log with a persisted
// snapshot, typically at session start.
func (w *Workflow) Restore(cart []domain.CartItem, transactions []domain.Transaction) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cart = append([]domain.CartItem(nil), cart...)
	w.transactions = append([]domain.Transaction(nil), transactions...)
}
