package model

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// PRICING
// =====================================================

var (
	TaxRate               = decimal.RequireFromString("0.08")
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShippingFee       = decimal.RequireFromString("9.99")
)

type Amounts struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// CalculateOrderAmounts prices the line snapshots.
// Tax is left unrounded; shipping is free strictly above the threshold.
func CalculateOrderAmounts(items []OrderItem) Amounts {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	shipping := FlatShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(TaxRate)

	return Amounts{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// Apply copies the amounts onto the order.
func (a Amounts) Apply(o *Order) {
	o.Subtotal = a.Subtotal
	o.Tax = a.Tax
	o.Shipping = a.Shipping
	o.Total = a.Total
}

// =====================================================
// STOCK
// =====================================================

// StockLine is the total quantity an order needs from one book.
type StockLine struct {
	BookID   uuid.UUID
	Quantity int
}

// StockLines sums quantities per book, sorted by book id so that every
// store touches rows in the same order.
func StockLines(items []OrderItem) []StockLine {
	index := make(map[uuid.UUID]int, len(items))
	lines := make([]StockLine, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.BookID]; ok {
			lines[i].Quantity = AddQuantity(lines[i].Quantity, it.Quantity)
			continue
		}
		index[it.BookID] = len(lines)
		lines = append(lines, StockLine{BookID: it.BookID, Quantity: it.Quantity})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].BookID.String() < lines[j].BookID.String()
	})
	return lines
}

// AddQuantity adds two non-negative quantities, saturating at math.MaxInt.
func AddQuantity(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}
