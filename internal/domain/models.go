package domain

import "time"

// StockUnit tracks inventory either as discrete units or as bulk
// containers with a fractional open remainder (liters left in a barrel).
type StockUnit struct {
	Kind           string  `json:"kind"`
	FullUnits      int     `json:"full_units"`
	PartialLiters  float64 `json:"partial_liters,omitempty"`
	CapacityLiters float64 `json:"capacity_liters,omitempty"`
}

type PriceOption struct {
	Kind        string `json:"kind"`
	PriceCents  int64  `json:"price_cents"`
	Description string `json:"description,omitempty"`
}

type Product struct {
	ID                 string        `json:"id"`
	SKU                string        `json:"sku"`
	Name               string        `json:"name"`
	Category           string        `json:"category"`
	Brand              string        `json:"brand,omitempty"`
	Description        string        `json:"description,omitempty"`
	StockUnit          StockUnit     `json:"stock_unit"`
	MinStockLevel      int           `json:"min_stock_level"`
	PurchasePriceCents int64         `json:"purchase_price_cents"`
	PriceOptions       []PriceOption `json:"price_options"`
	AvailableForPOS    bool          `json:"available_for_pos"`
	Status             string        `json:"status"`
}

// PriceFor returns the price option matching the sale mode, if any.
func (p Product) PriceFor(kind string) (PriceOption, bool) {
	for _, option := range p.PriceOptions {
		if option.Kind == kind {
			return option, true
		}
	}
	return PriceOption{}, false
}

type ProductCreateRequest struct {
	SKU                string        `json:"sku"`
	Name               string        `json:"name"`
	Category           string        `json:"category"`
	Brand              string        `json:"brand,omitempty"`
	Description        string        `json:"description,omitempty"`
	StockUnit          StockUnit     `json:"stock_unit"`
	MinStockLevel      int           `json:"min_stock_level"`
	PurchasePriceCents int64         `json:"purchase_price_cents"`
	PriceOptions       []PriceOption `json:"price_options"`
	AvailableForPOS    bool          `json:"available_for_pos"`
}

type ProductUpdateRequest struct {
	Name            *string       `json:"name,omitempty"`
	Category        *string       `json:"category,omitempty"`
	Brand           *string       `json:"brand,omitempty"`
	Description     *string       `json:"description,omitempty"`
	MinStockLevel   *int          `json:"min_stock_level,omitempty"`
	PriceOptions    []PriceOption `json:"price_options,omitempty"`
	AvailableForPOS *bool         `json:"available_for_pos,omitempty"`
	Status          *string       `json:"status,omitempty"`
}

// StockAdjustRequest overwrites a product's stock counters. Partial
// liters apply only to bulk-tracked products.
type StockAdjustRequest struct {
	FullUnits     int     `json:"full_units"`
	PartialLiters float64 `json:"partial_liters"`
}

type CartItem struct {
	ProductID      string  `json:"product_id"`
	Quantity       int     `json:"quantity"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	IsService      bool    `json:"is_service"`
	ServiceLiters  float64 `json:"service_liters,omitempty"`
}

type TransactionItem struct {
	CartItem
	SubtotalCents int64 `json:"subtotal_cents"`
}

type ReceiptDelivery struct {
	Email    string `json:"email,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
}

type PaymentDetails struct {
	Method          string           `json:"method"`
	CardVoucher     string           `json:"card_voucher,omitempty"`
	ReceiptDelivery *ReceiptDelivery `json:"receipt_delivery,omitempty"`
}

// Transaction is immutable once committed; the only later write is the
// status transition to refunded.
type Transaction struct {
	ID              string            `json:"id"`
	ReceiptNumber   string            `json:"receipt_number"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []TransactionItem `json:"items"`
	TotalCents      int64             `json:"total_cents"`
	DiscountCents   int64             `json:"discount_cents"`
	FinalTotalCents int64             `json:"final_total_cents"`
	Payment         PaymentDetails    `json:"payment"`
	CustomerID      string            `json:"customer_id,omitempty"`
	Status          string            `json:"status"`
}

type Vehicle struct {
	ID           string `json:"id"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	LicensePlate string `json:"license_plate,omitempty"`
}

type ServiceRecord struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Kind      string    `json:"kind"`
	Notes     string    `json:"notes,omitempty"`
	CostCents int64     `json:"cost_cents"`
}

type Customer struct {
	ID               string          `json:"id"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email,omitempty"`
	WhatsappPhone    string          `json:"whatsapp_phone,omitempty"`
	PreferredContact string          `json:"preferred_contact"`
	Vehicles         []Vehicle       `json:"vehicles,omitempty"`
	ServiceHistory   []ServiceRecord `json:"service_history,omitempty"`
	JoinDate         time.Time       `json:"join_date"`
	LastVisit        *time.Time      `json:"last_visit,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Status           string          `json:"status"`
}

func (c Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

type CustomerCreateRequest struct {
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	WhatsappPhone    string    `json:"whatsapp_phone,omitempty"`
	PreferredContact string    `json:"preferred_contact,omitempty"`
	Vehicles         []Vehicle `json:"vehicles,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

type CustomerUpdateRequest struct {
	FirstName        *string   `json:"first_name,omitempty"`
	LastName         *string   `json:"last_name,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	Email            *string   `json:"email,omitempty"`
	WhatsappPhone    *string   `json:"whatsapp_phone,omitempty"`
	PreferredContact *string   `json:"preferred_contact,omitempty"`
	Vehicles         []Vehicle `json:"vehicles,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	Status           *string   `json:"status,omitempty"`
}

type AddToCartRequest struct {
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	IsService     bool    `json:"is_service"`
	ServiceLiters float64 `json:"service_liters,omitempty"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Items      []CartItem `json:"items"`
	TotalCents int64      `json:"total_cents"`
}

type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
	CardVoucher   string `json:"card_voucher,omitempty"`
	DiscountCents int64  `json:"discount_cents"`
	CustomerID    string `json:"customer_id,omitempty"`
}

type CheckoutResponse struct {
	Transaction Transaction      `json:"transaction"`
	Delivery    *ReceiptDelivery `json:"delivery,omitempty"`
}

type RefundRequest struct {
	Reason     string `json:"reason"`
	ManagerPIN string `json:"manager_pin"`
}

type RefundResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	RefundedAt    string `json:"refunded_at"`
}

type ReceiptResponse struct {
	TransactionID string `json:"transaction_id"`
	ReceiptNumber string `json:"receipt_number"`
	PreviewText   string `json:"preview_text"`
	EscposBase64  string `json:"escpos_base64"`
	FileName      string `json:"file_name"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is the persistence model for auth credentials. Password
// holds a bcrypt hash, never plaintext.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type DailyReportPayment struct {
	PaymentMethod string `json:"payment_method"`
	Transactions  int64  `json:"transactions"`
	TotalCents    int64  `json:"total_cents"`
}

type DailyReport struct {
	Date            string               `json:"date"`
	Transactions    int64                `json:"transactions"`
	GrossSalesCents int64                `json:"gross_sales_cents"`
	DiscountCents   int64                `json:"discount_cents"`
	NetSalesCents   int64                `json:"net_sales_cents"`
	RefundedCents   int64                `json:"refunded_cents"`
	ServiceLiters   float64              `json:"service_liters"`
	ByPayment       []DailyReportPayment `json:"by_payment"`
}

const (
	StockKindUnit   = "unit"
	StockKindLiter  = "liter"
	StockKindBarrel = "barrel"
	StockKindGallon = "gallon"
	StockKindBucket = "bucket"
)

const (
	PriceKindUnit    = "unit"
	PriceKindService = "service"
)

const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

const (
	TxStatusCompleted = "completed"
	TxStatusRefunded  = "refunded"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

const (
	ContactPhone    = "phone"
	ContactEmail    = "email"
	ContactWhatsApp = "whatsapp"
)

const (
	ServiceKindCarwash   = "carwash"
	ServiceKindOilChange = "oil_change"
)

const (
	RoleManager = "manager"
	RoleCashier = "cashier"
)
