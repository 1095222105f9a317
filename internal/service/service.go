// Package service ties the POS workflow to the catalog, customer
// directory, and snapshot persistence, and enforces the request-level
// validation the workflow itself leaves to its caller.
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lubriwash/backend/internal/domain"
	"lubriwash/backend/internal/pos"
	"lubriwash/backend/internal/receipt"
	"lubriwash/backend/internal/snapshot"
	"lubriwash/backend/internal/store"
)

var (
	ErrManagerRole = errors.New("manager role required")
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const defaultTerminalID = "terminal-1"

type Service struct {
	repo      store.Repository
	snapshots snapshot.Store
	logger    zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*pos.Workflow
	// terminals disposed since startup; their snapshots still count
	// toward daily reports until the session is reopened
	dormant map[string]struct{}
}

func New(repo store.Repository, snapshots snapshot.Store, logger zerolog.Logger) *Service {
	if snapshots == nil {
		snapshots = snapshot.Noop{}
	}
	return &Service{
		repo:      repo,
		snapshots: snapshots,
		logger:    logger,
		sessions:  make(map[string]*pos.Workflow),
		dormant:   make(map[string]struct{}),
	}
}

// repoCatalog adapts the repository to the workflow's catalog
// collaborator. Absence maps to the bool; other errors pass through.
type repoCatalog struct {
	repo store.Repository
}

func (c repoCatalog) Find(ctx context.Context, productID string) (domain.Product, bool, error) {
	product, err := c.repo.FindProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, err
	}
	return *product, true, nil
}

func (c repoCatalog) Apply(ctx context.Context, product domain.Product) error {
	_, err := c.repo.UpdateProduct(ctx, product)
	return err
}

type repoCustomers struct {
	repo store.Repository
}

func (c repoCustomers) Find(ctx context.Context, customerID string) (domain.Customer, bool, error) {
	customer, err := c.repo.FindCustomer(ctx, customerID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Customer{}, false, nil
	}
	if err != nil {
		return domain.Customer{}, false, err
	}
	return *customer, true, nil
}

// session returns the workflow for a terminal, creating it and loading
// its persisted snapshot on first use.
func (s *Service) session(ctx context.Context, terminalID string) (string, *pos.Workflow) {
	terminalID = strings.TrimSpace(terminalID)
	if terminalID == "" {
		terminalID = defaultTerminalID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.sessions[terminalID]; ok {
		return terminalID, w
	}

	w := pos.New(repoCatalog{repo: s.repo}, repoCustomers{repo: s.repo})
	state, found, err := s.snapshots.Load(ctx, terminalID)
	if err != nil {
		s.logger.Warn().Err(err).Str("terminal_id", terminalID).Msg("snapshot load failed, starting empty session")
	} else if found {
		w.Restore(state.Cart, state.Transactions)
	}
	s.sessions[terminalID] = w
	delete(s.dormant, terminalID)
	return terminalID, w
}

// persist saves the session snapshot. Persistence is best effort: a
// failure is logged and does not unwind the committed mutation.
func (s *Service) persist(ctx context.Context, terminalID string, w *pos.Workflow) {
	cart, transactions := w.State()
	err := s.snapshots.Save(ctx, terminalID, snapshot.State{Cart: cart, Transactions: transactions})
	if err != nil {
		s.logger.Warn().Err(err).Str("terminal_id", terminalID).Msg("snapshot save failed")
	}
}

// DisposeSession persists and drops a terminal session.
func (s *Service) DisposeSession(ctx context.Context, terminalID string) {
	terminalID, w := s.session(ctx, terminalID)
	s.persist(ctx, terminalID, w)

	s.mu.Lock()
	delete(s.sessions, terminalID)
	s.dormant[terminalID] = struct{}{}
	s.mu.Unlock()
}

func (s *Service) Cart(ctx context.Context, terminalID string) (domain.CartResponse, error) {
	_, w := s.session(ctx, terminalID)
	return domain.CartResponse{Items: w.Cart(), TotalCents: w.CartTotal()}, nil
}

func (s *Service) AddToCart(ctx context.Context, terminalID string, req domain.AddToCartRequest) (domain.CartResponse, error) {
	if strings.TrimSpace(req.ProductID) == "" || req.Quantity < 1 || req.ServiceLiters < 0 {
		return domain.CartResponse{}, store.ErrInvalidInput
	}

	terminalID, w := s.session(ctx, terminalID)
	if err := w.AddToCart(ctx, req); err != nil {
		return domain.CartResponse{}, err
	}
	s.persist(ctx, terminalID, w)
	return domain.CartResponse{Items: w.Cart(), TotalCents: w.CartTotal()}, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, terminalID string, productID string) (domain.CartResponse, error) {
	terminalID, w := s.session(ctx, terminalID)
	w.RemoveFromCart(productID)
	s.persist(ctx, terminalID, w)
	return domain.CartResponse{Items: w.Cart(), TotalCents: w.CartTotal()}, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, terminalID string, productID string, quantity int) (domain.CartResponse, error) {
	if quantity < 1 {
		return domain.CartResponse{}, store.ErrInvalidInput
	}

	terminalID, w := s.session(ctx, terminalID)
	if err := w.UpdateQuantity(ctx, productID, quantity); err != nil {
		return domain.CartResponse{}, err
	}
	s.persist(ctx, terminalID, w)
	return domain.CartResponse{Items: w.Cart(), TotalCents: w.CartTotal()}, nil
}

func (s *Service) ClearCart(ctx context.Context, terminalID string) (domain.CartResponse, error) {
	terminalID, w := s.session(ctx, terminalID)
	w.ClearCart()
	s.persist(ctx, terminalID, w)
	return domain.CartResponse{Items: nil, TotalCents: 0}, nil
}

// Checkout validates the cashier's draft and commits the cart. The
// discount bound and card voucher checks live here, not in the
// workflow: calling the workflow directly bypasses them.
func (s *Service) Checkout(ctx context.Context, terminalID string, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method != domain.PaymentCash && method != domain.PaymentCard {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: unsupported payment method %q", store.ErrInvalidInput, req.PaymentMethod)
	}
	voucher := strings.TrimSpace(req.CardVoucher)
	if method == domain.PaymentCard && voucher == "" {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: card payment requires a voucher reference", store.ErrInvalidInput)
	}
	if method == domain.PaymentCash {
		voucher = ""
	}

	terminalID, w := s.session(ctx, terminalID)

	total := w.CartTotal()
	if req.DiscountCents < 0 || req.DiscountCents > total {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: discount must be between 0 and the cart total", store.ErrInvalidInput)
	}

	var (
		customer *domain.Customer
		delivery *domain.ReceiptDelivery
	)
	if req.CustomerID != "" {
		found, ok, err := w.Customer(ctx, req.CustomerID)
		if err != nil {
			return domain.CheckoutResponse{}, err
		}
		if !ok {
			return domain.CheckoutResponse{}, fmt.Errorf("customer %s: %w", req.CustomerID, store.ErrNotFound)
		}
		customer = &found
		delivery = deliveryFor(found)
	}

	tx, err := w.Commit(ctx, pos.Draft{
		DiscountCents: req.DiscountCents,
		Payment: domain.PaymentDetails{
			Method:          method,
			CardVoucher:     voucher,
			ReceiptDelivery: delivery,
		},
		CustomerID: req.CustomerID,
	})
	if err != nil {
		return domain.CheckoutResponse{}, err
	}
	s.persist(ctx, terminalID, w)

	if customer != nil {
		s.recordVisit(ctx, *customer, tx)
	}

	s.logger.Info().
		Str("terminal_id", terminalID).
		Str("transaction_id", tx.ID).
		Str("receipt_number", tx.ReceiptNumber).
		Int64("final_total_cents", tx.FinalTotalCents).
		Str("payment_method", method).
		Msg("transaction committed")

	return domain.CheckoutResponse{Transaction: tx, Delivery: delivery}, nil
}

// deliveryFor picks the receipt delivery channels from the customer's
// stored contact info.
func deliveryFor(customer domain.Customer) *domain.ReceiptDelivery {
	delivery := domain.ReceiptDelivery{}
	if customer.Email != "" {
		delivery.Email = customer.Email
	}
	if customer.WhatsappPhone != "" {
		delivery.WhatsApp = customer.WhatsappPhone
	}
	if delivery.Email == "" && delivery.WhatsApp == "" {
		return nil
	}
	return &delivery
}

// recordVisit appends service records derived from the committed line
// items and stamps the customer's last visit. The visit is stamped even
// when the cart held no service items. Best effort: a failure is logged
// and the transaction stands.
func (s *Service) recordVisit(ctx context.Context, customer domain.Customer, tx domain.Transaction) {
	appended := 0
	for _, item := range tx.Items {
		record := domain.ServiceRecord{
			Date:      tx.CreatedAt,
			CostCents: item.SubtotalCents,
		}
		switch {
		case item.IsService:
			record.Kind = domain.ServiceKindOilChange
			if item.ServiceLiters > 0 {
				record.Notes = fmt.Sprintf("%.1fL dispensed", item.ServiceLiters)
			}
		default:
			product, err := s.repo.FindProduct(ctx, item.ProductID)
			if err != nil || product.Category != "services" {
				continue
			}
			record.Kind = domain.ServiceKindCarwash
			record.Notes = product.Name
		}
		if _, err := s.repo.AppendServiceRecord(ctx, customer.ID, record, tx.CreatedAt); err != nil {
			s.logger.Warn().Err(err).Str("customer_id", customer.ID).Msg("service history append failed")
			return
		}
		appended++
	}
	if appended > 0 {
		// AppendServiceRecord already stamped the visit
		return
	}

	current, err := s.repo.FindCustomer(ctx, customer.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("customer_id", customer.ID).Msg("visit stamp failed")
		return
	}
	visit := tx.CreatedAt
	current.LastVisit = &visit
	if _, err := s.repo.UpdateCustomer(ctx, *current); err != nil {
		s.logger.Warn().Err(err).Str("customer_id", customer.ID).Msg("visit stamp failed")
	}
}

func (s *Service) Transactions(ctx context.Context, terminalID string) ([]domain.Transaction, error) {
	_, w := s.session(ctx, terminalID)
	return w.Transactions(), nil
}

func (s *Service) Transaction(ctx context.Context, terminalID string, transactionID string) (domain.Transaction, error) {
	_, w := s.session(ctx, terminalID)
	tx, ok := w.Transaction(transactionID)
	if !ok {
		return domain.Transaction{}, pos.ErrTransactionNotFound
	}
	return tx, nil
}

// Refund marks a transaction refunded. PIN verification happens at the
// transport layer; this transition does not restore stock.
func (s *Service) Refund(ctx context.Context, terminalID string, transactionID string, reason string) (domain.RefundResponse, error) {
	terminalID, w := s.session(ctx, terminalID)
	tx, err := w.MarkRefunded(transactionID)
	if err != nil {
		return domain.RefundResponse{}, err
	}
	s.persist(ctx, terminalID, w)

	s.logger.Info().
		Str("terminal_id", terminalID).
		Str("transaction_id", tx.ID).
		Str("reason", strings.TrimSpace(reason)).
		Msg("transaction refunded")

	return domain.RefundResponse{
		TransactionID: tx.ID,
		Status:        tx.Status,
		RefundedAt:    time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Receipt renders a committed transaction as preview text plus raw
// ESC/POS bytes. Items whose product no longer resolves are skipped.
func (s *Service) Receipt(ctx context.Context, terminalID string, transactionID string) (domain.ReceiptResponse, error) {
	_, w := s.session(ctx, terminalID)
	tx, ok := w.Transaction(transactionID)
	if !ok {
		return domain.ReceiptResponse{}, pos.ErrTransactionNotFound
	}

	var customer *domain.Customer
	if tx.CustomerID != "" {
		if found, err := s.repo.FindCustomer(ctx, tx.CustomerID); err == nil {
			customer = found
		}
	}

	doc := receipt.Render(tx, customer, func(productID string) (domain.Product, bool) {
		product, err := s.repo.FindProduct(ctx, productID)
		if err != nil {
			return domain.Product{}, false
		}
		return *product, true
	})

	return domain.ReceiptResponse{
		TransactionID: tx.ID,
		ReceiptNumber: tx.ReceiptNumber,
		PreviewText:   doc.Text(),
		EscposBase64:  base64.StdEncoding.EncodeToString(doc.Escpos()),
		FileName:      fmt.Sprintf("receipt-%s.bin", tx.ID),
	}, nil
}

// DailyReport aggregates committed transactions across all terminal
// sessions for a UTC calendar date (YYYY-MM-DD, default today). Disposed
// terminals are read back from their persisted snapshots so their sales
// stay in the totals.
func (s *Service) DailyReport(ctx context.Context, date string) (domain.DailyReport, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return domain.DailyReport{}, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrInvalidInput)
	}

	s.mu.Lock()
	sessions := make([]*pos.Workflow, 0, len(s.sessions))
	for _, w := range s.sessions {
		sessions = append(sessions, w)
	}
	dormant := make([]string, 0, len(s.dormant))
	for terminalID := range s.dormant {
		if _, live := s.sessions[terminalID]; !live {
			dormant = append(dormant, terminalID)
		}
	}
	s.mu.Unlock()

	report := domain.DailyReport{Date: date, ByPayment: []domain.DailyReportPayment{}}
	byPayment := map[string]*domain.DailyReportPayment{}

	fold := func(transactions []domain.Transaction) {
		for _, tx := range transactions {
			if tx.CreatedAt.UTC().Format("2006-01-02") != date {
				continue
			}
			if tx.Status == domain.TxStatusRefunded {
				report.RefundedCents += tx.FinalTotalCents
				continue
			}

			report.Transactions++
			report.GrossSalesCents += tx.TotalCents
			report.DiscountCents += tx.DiscountCents
			report.NetSalesCents += tx.FinalTotalCents
			for _, item := range tx.Items {
				if item.IsService {
					report.ServiceLiters += item.ServiceLiters
				}
			}

			payment := byPayment[tx.Payment.Method]
			if payment == nil {
				payment = &domain.DailyReportPayment{PaymentMethod: tx.Payment.Method}
				byPayment[tx.Payment.Method] = payment
			}
			payment.Transactions++
			payment.TotalCents += tx.FinalTotalCents
		}
	}

	for _, w := range sessions {
		fold(w.Transactions())
	}
	for _, terminalID := range dormant {
		state, found, err := s.snapshots.Load(ctx, terminalID)
		if err != nil {
			s.logger.Warn().Err(err).Str("terminal_id", terminalID).Msg("snapshot load failed, terminal excluded from report")
			continue
		}
		if found {
			fold(state.Transactions)
		}
	}

	for _, method := range []string{domain.PaymentCard, domain.PaymentCash} {
		if entry, ok := byPayment[method]; ok {
			report.ByPayment = append(report.ByPayment, *entry)
		}
	}
	return report, nil
}

// ListProducts returns the catalog, optionally filtered by a
// case-insensitive match on SKU, name, category, or brand.
func (s *Service) ListProducts(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products, nil
	}
	matched := make([]domain.Product, 0, len(products))
	for _, product := range products {
		haystack := strings.ToLower(product.SKU + " " + product.Name + " " + product.Category + " " + product.Brand)
		if strings.Contains(haystack, query) {
			matched = append(matched, product)
		}
	}
	return matched, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	if err := requireManager(ctx); err != nil {
		return domain.Product{}, err
	}

	product := domain.Product{
		SKU:                strings.ToUpper(strings.TrimSpace(req.SKU)),
		Name:               strings.TrimSpace(req.Name),
		Category:           strings.TrimSpace(req.Category),
		Brand:              strings.TrimSpace(req.Brand),
		Description:        strings.TrimSpace(req.Description),
		StockUnit:          req.StockUnit,
		MinStockLevel:      req.MinStockLevel,
		PurchasePriceCents: req.PurchasePriceCents,
		PriceOptions:       req.PriceOptions,
		AvailableForPOS:    req.AvailableForPOS,
		Status:             domain.StatusActive,
	}
	if product.StockUnit.Kind == "" {
		product.StockUnit.Kind = domain.StockKindUnit
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info().Str("product_id", created.ID).Str("sku", created.SKU).Msg("product created")
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	if err := requireManager(ctx); err != nil {
		return domain.Product{}, err
	}

	existing, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Category = category
	}
	if req.Brand != nil {
		updated.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.MinStockLevel = *req.MinStockLevel
	}
	if req.PriceOptions != nil {
		updated.PriceOptions = req.PriceOptions
	}
	if req.AvailableForPOS != nil {
		updated.AvailableForPOS = *req.AvailableForPOS
	}
	if req.Status != nil {
		if *req.Status != domain.StatusActive && *req.Status != domain.StatusInactive {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Status = *req.Status
	}

	result, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}
	return *result, nil
}

func (s *Service) SetStock(ctx context.Context, productID string, req domain.StockAdjustRequest) (domain.Product, error) {
	if err := requireManager(ctx); err != nil {
		return domain.Product{}, err
	}

	updated, err := s.repo.SetStock(ctx, productID, domain.StockUnit{
		FullUnits:     req.FullUnits,
		PartialLiters: req.PartialLiters,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info().
		Str("product_id", productID).
		Int("full_units", req.FullUnits).
		Float64("partial_liters", req.PartialLiters).
		Msg("stock adjusted")
	return *updated, nil
}

// ListCustomers returns customers, optionally filtered by a
// case-insensitive match on name, phone, or vehicle license plate.
func (s *Service) ListCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return customers, nil
	}
	matched := make([]domain.Customer, 0, len(customers))
	for _, customer := range customers {
		haystack := strings.ToLower(customer.FullName() + " " + customer.Phone)
		for _, vehicle := range customer.Vehicles {
			haystack += " " + strings.ToLower(vehicle.LicensePlate)
		}
		if strings.Contains(haystack, query) {
			matched = append(matched, customer)
		}
	}
	return matched, nil
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.repo.FindCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	contact := strings.TrimSpace(req.PreferredContact)
	if contact != "" && contact != domain.ContactPhone && contact != domain.ContactEmail && contact != domain.ContactWhatsApp {
		return domain.Customer{}, store.ErrInvalidInput
	}

	customer := domain.Customer{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Phone:            strings.TrimSpace(req.Phone),
		Email:            strings.TrimSpace(req.Email),
		WhatsappPhone:    strings.TrimSpace(req.WhatsappPhone),
		PreferredContact: contact,
		Vehicles:         req.Vehicles,
		Notes:            strings.TrimSpace(req.Notes),
	}

	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id string, req domain.CustomerUpdateRequest) (domain.Customer, error) {
	existing, err := s.repo.FindCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	updated := *existing
	if req.FirstName != nil {
		if strings.TrimSpace(*req.FirstName) == "" {
			return domain.Customer{}, store.ErrInvalidInput
		}
		updated.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updated.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		if strings.TrimSpace(*req.Phone) == "" {
			return domain.Customer{}, store.ErrInvalidInput
		}
		updated.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		updated.Email = strings.TrimSpace(*req.Email)
	}
	if req.WhatsappPhone != nil {
		updated.WhatsappPhone = strings.TrimSpace(*req.WhatsappPhone)
	}
	if req.PreferredContact != nil {
		contact := strings.TrimSpace(*req.PreferredContact)
		if contact != domain.ContactPhone && contact != domain.ContactEmail && contact != domain.ContactWhatsApp {
			return domain.Customer{}, store.ErrInvalidInput
		}
		updated.PreferredContact = contact
	}
	if req.Vehicles != nil {
		updated.Vehicles = req.Vehicles
	}
	if req.Notes != nil {
		updated.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.Status != nil {
		if *req.Status != domain.StatusActive && *req.Status != domain.StatusInactive {
			return domain.Customer{}, store.ErrInvalidInput
		}
		updated.Status = *req.Status
	}

	result, err := s.repo.UpdateCustomer(ctx, updated)
	if err != nil {
		return domain.Customer{}, err
	}
	return *result, nil
}

func requireManager(ctx context.Context) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleManager {
		return ErrManagerRole
	}
	return nil
}
