package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lubriwash/backend/internal/domain"
	"lubriwash/backend/internal/store"
	"lubriwash/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	products        map[string]domain.Product
	customers       map[string]domain.Customer
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_MANAGER_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	managerPwd := envOr("SEED_MANAGER_PASSWORD", "manager123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_MANAGER_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_MANAGER_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"manager", managerPwd, domain.RoleManager},
		{"cashier", cashierPwd, domain.RoleCashier},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func New() *Store {
	return &Store{
		products:        make(map[string]domain.Product),
		customers:       make(map[string]domain.Customer),
		usersByUsername: seedUsers(),
	}
}

func NewSeeded() *Store {
	products := []domain.Product{
		{
			ID: "prod-oil-5w30", SKU: "OIL-5W30", Name: "Castrol GTX 5W-30", Category: "lubricants", Brand: "Castrol",
			StockUnit:          domain.StockUnit{Kind: domain.StockKindBarrel, FullUnits: 3, PartialLiters: 42.5, CapacityLiters: 60},
			MinStockLevel:      1,
			PurchasePriceCents: 38000,
			PriceOptions: []domain.PriceOption{
				{Kind: domain.PriceKindUnit, PriceCents: 52000, Description: "sealed barrel"},
				{Kind: domain.PriceKindService, PriceCents: 1250, Description: "per liter, oil change"},
			},
			AvailableForPOS: true, Status: domain.StatusActive,
		},
		{
			ID: "prod-oil-10w40", SKU: "OIL-10W40", Name: "Mobil Super 10W-40", Category: "lubricants", Brand: "Mobil",
			StockUnit:          domain.StockUnit{Kind: domain.StockKindBarrel, FullUnits: 2, PartialLiters: 18, CapacityLiters: 60},
			MinStockLevel:      1,
			PurchasePriceCents: 34000,
			PriceOptions: []domain.PriceOption{
				{Kind: domain.PriceKindUnit, PriceCents: 47000},
				{Kind: domain.PriceKindService, PriceCents: 1100, Description: "per liter, oil change"},
			},
			AvailableForPOS: true, Status: domain.StatusActive,
		},
		{
			ID: "prod-coolant-1g", SKU: "COOL-1GAL", Name: "Prestone Coolant 1gal", Category: "fluids", Brand: "Prestone",
			StockUnit:          domain.StockUnit{Kind: domain.StockKindGallon, FullUnits: 24},
			MinStockLevel:      6,
			PurchasePriceCents: 1450,
			PriceOptions:       []domain.PriceOption{{Kind: domain.PriceKindUnit, PriceCents: 2200}},
			AvailableForPOS:    true, Status: domain.StatusActive,
		},
		{
			ID: "prod-wash-full", SKU: "WASH-FULL", Name: "Full Car Wash", Category: "services",
			StockUnit:       domain.StockUnit{Kind: domain.StockKindUnit, FullUnits: 500},
			PriceOptions:    []domain.PriceOption{{Kind: domain.PriceKindUnit, PriceCents: 1500}},
			AvailableForPOS: true, Status: domain.StatusActive,
		},
		{
			ID: "prod-wash-express", SKU: "WASH-EXP", Name: "Express Wash", Category: "services",
			StockUnit:       domain.StockUnit{Kind: domain.StockKindUnit, FullUnits: 500},
			PriceOptions:    []domain.PriceOption{{Kind: domain.PriceKindUnit, PriceCents: 800}},
			AvailableForPOS: true, Status: domain.StatusActive,
		},
		{
			ID: "prod-filter-ph7317", SKU: "FILT-PH7317", Name: "Fram Oil Filter PH7317", Category: "filters", Brand: "Fram",
			StockUnit:          domain.StockUnit{Kind: domain.StockKindUnit, FullUnits: 30},
			MinStockLevel:      8,
			PurchasePriceCents: 450,
			PriceOptions:       []domain.PriceOption{{Kind: domain.PriceKindUnit, PriceCents: 900}},
			AvailableForPOS:    true, Status: domain.StatusActive,
		},
		{
			ID: "prod-degreaser-5l", SKU: "DEGR-5L", Name: "Engine Degreaser 5L", Category: "chemicals",
			StockUnit:          domain.StockUnit{Kind: domain.StockKindBucket, FullUnits: 10},
			MinStockLevel:      3,
			PurchasePriceCents: 1800,
			PriceOptions:       []domain.PriceOption{{Kind: domain.PriceKindUnit, PriceCents: 2900}},
			AvailableForPOS:    false, Status: domain.StatusActive,
		},
	}

	joined := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	customers := []domain.Customer{
		{
			ID: "cust-ana", FirstName: "Ana", LastName: "Gomez", Phone: "6000-0001",
			Email: "ana.gomez@example.com", PreferredContact: domain.ContactEmail,
			Vehicles: []domain.Vehicle{{ID: "veh-1", Make: "Toyota", Model: "Corolla", Year: 2019, LicensePlate: "AB1234"}},
			JoinDate: joined, Status: domain.StatusActive,
		},
		{
			ID: "cust-luis", FirstName: "Luis", LastName: "Castillo", Phone: "6000-0002",
			WhatsappPhone: "6000-0002", PreferredContact: domain.ContactWhatsApp,
			Vehicles: []domain.Vehicle{{ID: "veh-2", Make: "Hyundai", Model: "Tucson", Year: 2022}},
			JoinDate: joined.AddDate(0, 2, 0), Status: domain.StatusActive,
		},
	}

	s := New()
	for _, p := range products {
		s.products[p.ID] = p
	}
	for _, c := range customers {
		s.customers[c.ID] = c
	}
	return s
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, cloneProduct(p))
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})
	return products, nil
}

func (s *Store) FindProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	dup := cloneProduct(product)
	return &dup, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrDuplicate
	}
	for _, existing := range s.products {
		if existing.SKU == product.SKU {
			return nil, store.ErrDuplicate
		}
	}
	if product.Status == "" {
		product.Status = domain.StatusActive
	}

	s.products[product.ID] = cloneProduct(product)
	created := cloneProduct(product)
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; !exists {
		return nil, store.ErrNotFound
	}
	s.products[product.ID] = cloneProduct(product)
	updated := cloneProduct(product)
	return &updated, nil
}

func (s *Store) SetStock(_ context.Context, productID string, stock domain.StockUnit) (*domain.Product, error) {
	if stock.FullUnits < 0 || stock.PartialLiters < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[productID]
	if !exists {
		return nil, store.ErrNotFound
	}
	stock.Kind = product.StockUnit.Kind
	stock.CapacityLiters = product.StockUnit.CapacityLiters
	product.StockUnit = stock
	s.products[productID] = product
	updated := cloneProduct(product)
	return &updated, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, cloneCustomer(c))
	}
	slices.SortFunc(customers, func(a, b domain.Customer) int {
		if a.LastName == b.LastName {
			return cmpString(a.FirstName, b.FirstName)
		}
		return cmpString(a.LastName, b.LastName)
	})
	return customers, nil
}

func (s *Store) FindCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, exists := s.customers[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	dup := cloneCustomer(customer)
	return &dup, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	if strings.TrimSpace(customer.FirstName) == "" || strings.TrimSpace(customer.Phone) == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if customer.ID == "" {
		customer.ID = xid.New("cust")
	}
	if _, exists := s.customers[customer.ID]; exists {
		return nil, store.ErrDuplicate
	}
	if customer.JoinDate.IsZero() {
		customer.JoinDate = time.Now().UTC()
	}
	if customer.PreferredContact == "" {
		customer.PreferredContact = domain.ContactPhone
	}
	if customer.Status == "" {
		customer.Status = domain.StatusActive
	}

	s.customers[customer.ID] = cloneCustomer(customer)
	created := cloneCustomer(customer)
	return &created, nil
}

func (s *Store) UpdateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	if strings.TrimSpace(customer.FirstName) == "" || strings.TrimSpace(customer.Phone) == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[customer.ID]; !exists {
		return nil, store.ErrNotFound
	}
	s.customers[customer.ID] = cloneCustomer(customer)
	updated := cloneCustomer(customer)
	return &updated, nil
}

func (s *Store) AppendServiceRecord(_ context.Context, customerID string, record domain.ServiceRecord, visitAt time.Time) (*domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, exists := s.customers[customerID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if record.ID == "" {
		record.ID = xid.New("svc")
	}
	if record.Date.IsZero() {
		record.Date = visitAt
	}
	customer.ServiceHistory = append(customer.ServiceHistory, record)
	visit := visitAt
	customer.LastVisit = &visit
	s.customers[customerID] = customer
	updated := cloneCustomer(customer)
	return &updated, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrDuplicate
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleCashier
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) FindUser(_ context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByUsername[strings.ToLower(strings.TrimSpace(username))]
	if !exists {
		return nil, store.ErrNotFound
	}
	dup := user
	return &dup, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func validateProduct(product domain.Product) error {
	if strings.TrimSpace(product.SKU) == "" || strings.TrimSpace(product.Name) == "" || strings.TrimSpace(product.Category) == "" {
		return store.ErrInvalidInput
	}
	if product.StockUnit.FullUnits < 0 || product.StockUnit.PartialLiters < 0 {
		return store.ErrInvalidInput
	}
	if len(product.PriceOptions) == 0 {
		return store.ErrInvalidInput
	}
	for _, option := range product.PriceOptions {
		if option.Kind != domain.PriceKindUnit && option.Kind != domain.PriceKindService {
			return store.ErrInvalidInput
		}
		if option.PriceCents < 1 {
			return store.ErrInvalidInput
		}
	}
	return nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneProduct(src domain.Product) domain.Product {
	dup := src
	options := make([]domain.PriceOption, len(src.PriceOptions))
	copy(options, src.PriceOptions)
	dup.PriceOptions = options
	return dup
}

func cloneCustomer(src domain.Customer) domain.Customer {
	dup := src
	vehicles := make([]domain.Vehicle, len(src.Vehicles))
	copy(vehicles, src.Vehicles)
	dup.Vehicles = vehicles
	history := make([]domain.ServiceRecord, len(src.ServiceHistory))
	copy(history, src.ServiceHistory)
	dup.ServiceHistory = history
	if src.LastVisit != nil {
		visit := *src.LastVisit
		dup.LastVisit = &visit
	}
	return dup
}
