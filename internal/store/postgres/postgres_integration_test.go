package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"lubriwash/backend/internal/domain"
)

func TestProductAndCustomerRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("LUBRIWASH_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set LUBRIWASH_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	productID := fmt.Sprintf("prod-it-%d", stamp)
	customerID := fmt.Sprintf("cust-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	})

	created, err := s.CreateProduct(ctx, domain.Product{
		ID:       productID,
		SKU:      fmt.Sprintf("SKU-IT-%d", stamp),
		Name:     "Integration Test Oil",
		Category: "lubricants",
		StockUnit: domain.StockUnit{
			Kind: domain.StockKindBarrel, FullUnits: 2, PartialLiters: 30, CapacityLiters: 60,
		},
		PriceOptions: []domain.PriceOption{
			{Kind: domain.PriceKindUnit, PriceCents: 50000},
			{Kind: domain.PriceKindService, PriceCents: 1200},
		},
		AvailableForPOS: true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := s.SetStock(ctx, created.ID, domain.StockUnit{FullUnits: 1, PartialLiters: 12.5}); err != nil {
		t.Fatalf("set stock: %v", err)
	}
	fetched, err := s.FindProduct(ctx, created.ID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if fetched.StockUnit.FullUnits != 1 || fetched.StockUnit.PartialLiters != 12.5 {
		t.Fatalf("unexpected stock after update: %+v", fetched.StockUnit)
	}
	if len(fetched.PriceOptions) != 2 {
		t.Fatalf("price options not round-tripped: %+v", fetched.PriceOptions)
	}

	if _, err := s.CreateCustomer(ctx, domain.Customer{
		ID:        customerID,
		FirstName: "Test",
		LastName:  "Customer",
		Phone:     "6000-9999",
		Vehicles:  []domain.Vehicle{{ID: "veh-it", Make: "Kia", Model: "Rio", Year: 2021}},
	}); err != nil {
		t.Fatalf("create customer: %v", err)
	}

	visit := time.Now().UTC().Truncate(time.Second)
	updated, err := s.AppendServiceRecord(ctx, customerID, domain.ServiceRecord{
		Kind:      domain.ServiceKindOilChange,
		CostCents: 5600,
	}, visit)
	if err != nil {
		t.Fatalf("append service record: %v", err)
	}
	if len(updated.ServiceHistory) != 1 || updated.LastVisit == nil {
		t.Fatalf("service record not appended: %+v", updated)
	}
}
