package store

import (
	"context"
	"errors"
	"time"

	"lubriwash/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("already exists")
)

// Repository holds the long-lived records: the product catalog, the
// customer directory, and user accounts. Cart and transaction state
// belong to terminal sessions and are persisted separately.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	FindProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	SetStock(ctx context.Context, productID string, stock domain.StockUnit) (*domain.Product, error)

	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	FindCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error)
	AppendServiceRecord(ctx context.Context, customerID string, record domain.ServiceRecord, visitAt time.Time) (*domain.Customer, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	FindUser(ctx context.Context, username string) (*domain.UserAccount, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
