package receipt

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"lubriwash/backend/internal/domain"
)

func sampleTransaction() domain.Transaction {
	return domain.Transaction{
		ID:            "txn-1",
		ReceiptNumber: "RCP-20260820-100000-ab12",
		CreatedAt:     time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Items: []domain.TransactionItem{
			{
				CartItem: domain.CartItem{
					ProductID:      "prod-wash",
					Quantity:       2,
					UnitPriceCents: 2500,
				},
				SubtotalCents: 5000,
			},
			{
				CartItem: domain.CartItem{
					ProductID:      "prod-oil",
					Quantity:       1,
					UnitPriceCents: 1200,
					IsService:      true,
					ServiceLiters:  4.5,
				},
				SubtotalCents: 1200,
			},
		},
		TotalCents:      6200,
		DiscountCents:   200,
		FinalTotalCents: 6000,
		Payment:         domain.PaymentDetails{Method: domain.PaymentCard, CardVoucher: "V-778"},
		Status:          domain.TxStatusCompleted,
	}
}

func sampleLookup(names map[string]string) ProductLookup {
	return func(id string) (domain.Product, bool) {
		name, ok := names[id]
		if !ok {
			return domain.Product{}, false
		}
		return domain.Product{ID: id, Name: name}, true
	}
}

func TestRenderFullReceipt(t *testing.T) {
	customer := &domain.Customer{FirstName: "Ana", LastName: "Gomez", Phone: "6000-0000"}
	doc := Render(sampleTransaction(), customer, sampleLookup(map[string]string{
		"prod-wash": "Full Car Wash",
		"prod-oil":  "Castrol GTX 5W-30",
	}))
	text := doc.Text()

	require.Contains(t, text, "Lubricar & Wash Coronado")
	require.Contains(t, text, "RCP-20260820-100000-ab12")
	require.Contains(t, text, "20/08/2026 10:00")
	require.Contains(t, text, "Ana Gomez | 6000-0000")
	require.Contains(t, text, "Full Car Wash")
	require.Contains(t, text, "> Service (4.5L)")
	require.Contains(t, text, "$62.00")
	require.Contains(t, text, "-$2.00")
	require.Contains(t, text, "$60.00")
	require.Contains(t, text, "Paid via CARD #V-778")
	require.Contains(t, text, "Thank you for your business!")
}

func TestRenderSkipsUnresolvableProducts(t *testing.T) {
	doc := Render(sampleTransaction(), nil, sampleLookup(map[string]string{
		"prod-oil": "Castrol GTX 5W-30",
	}))
	text := doc.Text()

	require.NotContains(t, text, "prod-wash")
	require.Contains(t, text, "Castrol GTX 5W-30")
	// Totals reflect the committed transaction even when a row is skipped.
	require.Contains(t, text, "$60.00")
}

func TestRenderWithoutCustomerOrDiscount(t *testing.T) {
	tx := sampleTransaction()
	tx.DiscountCents = 0
	tx.FinalTotalCents = tx.TotalCents
	tx.Payment = domain.PaymentDetails{Method: domain.PaymentCash}

	doc := Render(tx, nil, sampleLookup(map[string]string{
		"prod-wash": "Full Car Wash",
		"prod-oil":  "Castrol GTX 5W-30",
	}))
	text := doc.Text()

	require.NotContains(t, text, "Discount")
	require.NotContains(t, text, "|")
	require.Contains(t, text, "Paid via CASH")
	require.NotContains(t, text, "#")
}

func TestEscposFraming(t *testing.T) {
	doc := Document{Lines: []string{"a", "b"}}
	raw := doc.Escpos()

	require.Equal(t, []byte{0x1b, 0x40}, raw[:2])
	require.Equal(t, []byte{0x1d, 0x56, 0x41, 0x10}, raw[len(raw)-4:])
	require.Contains(t, string(raw), "a\nb\n")
}

func TestMoneyFormatting(t *testing.T) {
	require.Equal(t, "$0.05", money(5))
	require.Equal(t, "$12.00", money(1200))
	require.Equal(t, "-$3.50", money(-350))
}

func TestSpreadNeverCollides(t *testing.T) {
	row := spread(strings.Repeat("x", 30), strings.Repeat("y", 30))
	require.Contains(t, row, "x y")
}

func TestAccentedNamesKeepColumnsAligned(t *testing.T) {
	doc := Render(sampleTransaction(), nil, sampleLookup(map[string]string{
		"prod-wash": "Lubricación Sintética Premium Máxima",
		"prod-oil":  "Aceite Móvil",
	}))

	var itemRows []string
	for _, line := range doc.Lines {
		if strings.Contains(line, "$25.00") || strings.Contains(line, "$12.00") {
			itemRows = append(itemRows, line)
		}
	}
	require.Len(t, itemRows, 2)

	// the price column must start at the same rune offset in every row
	var offsets []int
	for _, row := range itemRows {
		require.True(t, utf8.ValidString(row))
		offsets = append(offsets, utf8.RuneCountInString(row[:strings.IndexRune(row, '$')]))
	}
	require.Equal(t, offsets[0], offsets[1])

	clipped := clip("Lubricación Sintética Premium Máxima", 22)
	require.True(t, utf8.ValidString(clipped))
	require.Len(t, []rune(clipped), 22)
	require.True(t, strings.HasSuffix(clipped, "."))

	row := spread("Atención:", "$1.00")
	require.Equal(t, lineWidth, utf8.RuneCountInString(row))
}
