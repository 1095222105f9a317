// Package receipt turns a committed transaction into a printable
// document. Rendering is a pure transform: it reads the transaction,
// a catalog lookup, and an optional customer record, and mutates
// nothing.
package receipt

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"lubriwash/backend/internal/domain"
)

const (
	shopName   = "Lubricar & Wash Coronado"
	lineWidth  = 40
	footerLine = "Thank you for your business!"
)

// ProductLookup resolves a product by id. Items whose product no longer
// resolves are skipped silently.
type ProductLookup func(productID string) (domain.Product, bool)

type Document struct {
	Lines []string
}

func (d Document) Text() string {
	return strings.Join(d.Lines, "\n") + "\n"
}

// Escpos returns the document as raw ESC/POS bytes: initialize, one
// line per row, partial cut.
func (d Document) Escpos() []byte {
	buf := []byte{0x1b, 0x40}
	for _, line := range d.Lines {
		buf = append(buf, []byte(line)...)
		buf = append(buf, '\n')
	}
	buf = append(buf, []byte{0x1d, 0x56, 0x41, 0x10}...)
	return buf
}

// Render lays out the receipt: header, number and date, optional
// customer line, itemized rows with a service sub-line, totals, and
// payment line. The discount row only appears when a discount was
// applied.
func Render(tx domain.Transaction, customer *domain.Customer, lookup ProductLookup) Document {
	lines := []string{
		center(shopName),
		strings.Repeat("=", lineWidth),
		spread(tx.ReceiptNumber, tx.CreatedAt.Format("02/01/2006 15:04")),
	}
	if customer != nil {
		lines = append(lines, fmt.Sprintf("%s | %s", customer.FullName(), customer.Phone))
	}
	lines = append(lines,
		strings.Repeat("-", lineWidth),
		fmt.Sprintf("%-22s%3s %6s %7s", "Item", "Qty", "Price", "Total"),
		strings.Repeat("-", lineWidth),
	)

	for _, item := range tx.Items {
		product, ok := lookup(item.ProductID)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s%3d %6s %7s",
			pad(clip(product.Name, 22), 22),
			item.Quantity,
			money(item.UnitPriceCents),
			money(item.SubtotalCents),
		))
		if item.IsService {
			if item.ServiceLiters > 0 {
				lines = append(lines, fmt.Sprintf("  > Service (%sL)", liters(item.ServiceLiters)))
			} else {
				lines = append(lines, "  > Service")
			}
		}
	}

	lines = append(lines,
		strings.Repeat("-", lineWidth),
		spread("Subtotal:", money(tx.TotalCents)),
	)
	if tx.DiscountCents > 0 {
		lines = append(lines, spread("Discount:", "-"+money(tx.DiscountCents)))
	}
	lines = append(lines, spread("TOTAL:", money(tx.FinalTotalCents)))

	payment := "Paid via " + strings.ToUpper(tx.Payment.Method)
	if tx.Payment.CardVoucher != "" {
		payment += " #" + tx.Payment.CardVoucher
	}
	lines = append(lines,
		payment,
		strings.Repeat("=", lineWidth),
		center(footerLine),
	)
	return Document{Lines: lines}
}

func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

func liters(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Layout helpers measure in runes, not bytes, so accented product and
// customer names keep the columns aligned and never get cut mid-rune.

func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "."
}

func pad(s string, width int) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

func center(s string) string {
	length := utf8.RuneCountInString(s)
	if length >= lineWidth {
		return s
	}
	return strings.Repeat(" ", (lineWidth-length)/2) + s
}

// spread left-aligns one fragment and right-aligns the other on a
// single row.
func spread(left, right string) string {
	gap := lineWidth - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
