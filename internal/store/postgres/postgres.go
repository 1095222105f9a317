// Package postgres backs the repository with PostgreSQL through the
// pgx stdlib driver. Structured fields (price options, vehicles,
// service history) are stored as JSONB; schema is managed out of band.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"lubriwash/backend/internal/domain"
	"lubriwash/backend/internal/store"
	"lubriwash/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, name, category, COALESCE(brand,''), COALESCE(description,''),
			stock_kind, full_units, partial_liters, capacity_liters,
			min_stock_level, purchase_price_cents, price_options, available_for_pos, status
		FROM products
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) FindProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sku, name, category, COALESCE(brand,''), COALESCE(description,''),
			stock_kind, full_units, partial_liters, capacity_liters,
			min_stock_level, purchase_price_cents, price_options, available_for_pos, status
		FROM products
		WHERE id = $1
	`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if product.ID == "" {
		product.ID = xid.New("prod")
	}
	if product.Status == "" {
		product.Status = domain.StatusActive
	}
	options, err := json.Marshal(product.PriceOptions)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, category, brand, description,
			stock_kind, full_units, partial_liters, capacity_liters,
			min_stock_level, purchase_price_cents, price_options, available_for_pos, status,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now(),now())
	`, product.ID, product.SKU, product.Name, product.Category, nullIfEmpty(product.Brand), nullIfEmpty(product.Description),
		product.StockUnit.Kind, product.StockUnit.FullUnits, product.StockUnit.PartialLiters, product.StockUnit.CapacityLiters,
		product.MinStockLevel, product.PurchasePriceCents, options, product.AvailableForPOS, product.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	options, err := json.Marshal(product.PriceOptions)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, brand = $4, description = $5,
			stock_kind = $6, full_units = $7, partial_liters = $8, capacity_liters = $9,
			min_stock_level = $10, purchase_price_cents = $11, price_options = $12,
			available_for_pos = $13, status = $14, updated_at = now()
		WHERE id = $1
	`, product.ID, product.Name, product.Category, nullIfEmpty(product.Brand), nullIfEmpty(product.Description),
		product.StockUnit.Kind, product.StockUnit.FullUnits, product.StockUnit.PartialLiters, product.StockUnit.CapacityLiters,
		product.MinStockLevel, product.PurchasePriceCents, options, product.AvailableForPOS, product.Status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) SetStock(ctx context.Context, productID string, stock domain.StockUnit) (*domain.Product, error) {
	if stock.FullUnits < 0 || stock.PartialLiters < 0 {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET full_units = $2, partial_liters = $3, updated_at = now()
		WHERE id = $1
	`, productID, stock.FullUnits, stock.PartialLiters)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.FindProduct(ctx, productID)
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, phone, COALESCE(email,''), COALESCE(whatsapp_phone,''),
			preferred_contact, vehicles, service_history, join_date, last_visit, COALESCE(notes,''), status
		FROM customers
		ORDER BY last_name, first_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) FindCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, phone, COALESCE(email,''), COALESCE(whatsapp_phone,''),
			preferred_contact, vehicles, service_history, join_date, last_visit, COALESCE(notes,''), status
		FROM customers
		WHERE id = $1
	`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if strings.TrimSpace(customer.FirstName) == "" || strings.TrimSpace(customer.Phone) == "" {
		return nil, store.ErrInvalidInput
	}
	if customer.ID == "" {
		customer.ID = xid.New("cust")
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
	vehicles, history, err := marshalCustomerJSON(customer)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO customers (id, first_name, last_name, phone, email, whatsapp_phone,
			preferred_contact, vehicles, service_history, join_date, last_visit, notes, status,
			created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now(),now())
	`, customer.ID, customer.FirstName, customer.LastName, customer.Phone,
		nullIfEmpty(customer.Email), nullIfEmpty(customer.WhatsappPhone),
		customer.PreferredContact, vehicles, history,
		customer.JoinDate, nullTime(customer.LastVisit), nullIfEmpty(customer.Notes), customer.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := customer
	return &created, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if strings.TrimSpace(customer.FirstName) == "" || strings.TrimSpace(customer.Phone) == "" {
		return nil, store.ErrInvalidInput
	}
	vehicles, history, err := marshalCustomerJSON(customer)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET first_name = $2, last_name = $3, phone = $4, email = $5, whatsapp_phone = $6,
			preferred_contact = $7, vehicles = $8, service_history = $9,
			last_visit = $10, notes = $11, status = $12, updated_at = now()
		WHERE id = $1
	`, customer.ID, customer.FirstName, customer.LastName, customer.Phone,
		nullIfEmpty(customer.Email), nullIfEmpty(customer.WhatsappPhone),
		customer.PreferredContact, vehicles, history,
		nullTime(customer.LastVisit), nullIfEmpty(customer.Notes), customer.Status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := customer
	return &updated, nil
}

func (s *Store) AppendServiceRecord(ctx context.Context, customerID string, record domain.ServiceRecord, visitAt time.Time) (*domain.Customer, error) {
	customer, err := s.FindCustomer(ctx, customerID)
	if err != nil {
		return nil, err
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
	return s.UpdateCustomer(ctx, *customer)
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if user.Role == "" {
		user.Role = domain.RoleCashier
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,true,$4)
	`, username, user.Password, user.Role, user.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) FindUser(ctx context.Context, username string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		WHERE username = $1
	`, strings.ToLower(strings.TrimSpace(username))).Scan(
		&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		product domain.Product
		options []byte
	)
	err := row.Scan(&product.ID, &product.SKU, &product.Name, &product.Category, &product.Brand, &product.Description,
		&product.StockUnit.Kind, &product.StockUnit.FullUnits, &product.StockUnit.PartialLiters, &product.StockUnit.CapacityLiters,
		&product.MinStockLevel, &product.PurchasePriceCents, &options, &product.AvailableForPOS, &product.Status)
	if err != nil {
		return domain.Product{}, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &product.PriceOptions); err != nil {
			return domain.Product{}, err
		}
	}
	return product, nil
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var (
		customer  domain.Customer
		vehicles  []byte
		history   []byte
		lastVisit sql.NullTime
	)
	err := row.Scan(&customer.ID, &customer.FirstName, &customer.LastName, &customer.Phone,
		&customer.Email, &customer.WhatsappPhone, &customer.PreferredContact,
		&vehicles, &history, &customer.JoinDate, &lastVisit, &customer.Notes, &customer.Status)
	if err != nil {
		return domain.Customer{}, err
	}
	if len(vehicles) > 0 {
		if err := json.Unmarshal(vehicles, &customer.Vehicles); err != nil {
			return domain.Customer{}, err
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &customer.ServiceHistory); err != nil {
			return domain.Customer{}, err
		}
	}
	if lastVisit.Valid {
		visit := lastVisit.Time
		customer.LastVisit = &visit
	}
	return customer, nil
}

func marshalCustomerJSON(customer domain.Customer) ([]byte, []byte, error) {
	if customer.Vehicles == nil {
		customer.Vehicles = []domain.Vehicle{}
	}
	if customer.ServiceHistory == nil {
		customer.ServiceHistory = []domain.ServiceRecord{}
	}
	vehicles, err := json.Marshal(customer.Vehicles)
	if err != nil {
		return nil, nil, err
	}
	history, err := json.Marshal(customer.ServiceHistory)
	if err != nil {
		return nil, nil, err
	}
	return vehicles, history, nil
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}
