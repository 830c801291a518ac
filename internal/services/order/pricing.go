package order

import (
	"storeadmin/internal/config"
	"storeadmin/internal/models"

	"github.com/shopspring/decimal"
)

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// priceLines freezes one OrderItem per line at the product's current
// effective price and sums the order.
func priceLines(lines []Line, products map[uint]*models.Product, pricing config.Pricing, discount decimal.Decimal) ([]models.OrderItem, Totals, error) {
	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		p := products[l.ProductID]
		unit := p.EffectivePrice()
		lineTotal := unit.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
		subtotal = subtotal.Add(lineTotal)

		pid := p.ID
		items = append(items, models.OrderItem{
			ProductID:   &pid,
			ProductName: p.Name,
			ProductSKU:  p.SKU,
			UnitPrice:   unit,
			Quantity:    l.Quantity,
			TotalPrice:  lineTotal,
		})
	}

	t := Totals{
		Subtotal: subtotal,
		Tax:      subtotal.Mul(pricing.TaxRate).Round(2),
		Shipping: pricing.ShippingFlatFee.Round(2),
		Discount: discount.Round(2),
	}
	gross := t.Subtotal.Add(t.Tax).Add(t.Shipping)
	if t.Discount.GreaterThan(gross) {
		return nil, Totals{}, ErrDiscountTooLarge
	}
	t.Total = gross.Sub(t.Discount)
	return items, t, nil
}

// mergeLines sums duplicate products and returns them in ascending product id
// order, the order rows are locked in.
func mergeLines(lines []Line) []Line {
	qty := make(map[uint]int, len(lines))
	var ids []uint
	for _, l := range lines {
		if _, ok := qty[l.ProductID]; !ok {
			ids = append(ids, l.ProductID)
		}
		qty[l.ProductID] += l.Quantity
	}
	sortIDs(ids)

	out := make([]Line, 0, len(ids))
	for _, id := range ids {
		out = append(out, Line{ProductID: id, Quantity: qty[id]})
	}
	return out
}
