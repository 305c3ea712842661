package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurelia/internal/repos"
	"aurelia/internal/services"
)

func TestBuildInvoice(t *testing.T) {
	o := repos.OrderRow{
		Number:        "AUR-20260829-0042",
		CustomerName:  "Iris Bellamy",
		CustomerEmail: "iris@aurelia.test",
		Phone:         "555-0147",
		Address:       "4 Meridian Court",
		City:          "Savannah",
		State:         "GA",
		PostalCode:    "31401",
		PaymentMethod: "card",
		CouponCode:    "SAVE20",
		Subtotal:      265.00,
		Discount:      53.00,
		Shipping:      0,
		Total:         212.00,
		Status:        "PENDING",
		PlacedAt:      "2026-08-29T10:15:00Z",
		EstDelivery:   "2026-09-07T10:15:00Z",
	}
	items := []repos.OrderItemRow{
		{Name: "Figaro Chain Necklace", VariantDesc: "Length: 18 in, Material: 14k Gold", Qty: 1, UnitPrice: 178.00, Subtotal: 178.00},
		{Name: "Pearl Drop Earrings", Qty: 1, UnitPrice: 87.00, Subtotal: 87.00},
	}

	text := services.BuildInvoice(o, items)

	require.NotEmpty(t, text)
	assert.Contains(t, text, "AURELIA FINE JEWELLERY")
	assert.Contains(t, text, "Invoice for order AUR-20260829-0042")
	assert.Contains(t, text, "Placed:    2026-08-29")
	assert.Contains(t, text, "Delivery:  2026-09-07 (estimated)")
	assert.Contains(t, text, "Iris Bellamy")
	assert.Contains(t, text, "Savannah, GA 31401")
	assert.Contains(t, text, "Figaro Chain Necklace (Length: 18 in, Material: 14k Gold)")
	assert.Contains(t, text, "Pearl Drop Earrings")
	assert.Contains(t, text, "Discount (SAVE20):")
	assert.Contains(t, text, "-53.00")
	assert.Contains(t, text, "212.00")
}

func TestBuildInvoiceOmitsOptionalBlocks(t *testing.T) {
	o := repos.OrderRow{
		Number:        "AUR-20260829-0001",
		CustomerName:  "Maya Lindqvist",
		CustomerEmail: "maya@aurelia.test",
		PaymentMethod: "cod",
		Subtotal:      59.00,
		Shipping:      15.00,
		Total:         74.00,
		Status:        "PENDING",
		PlacedAt:      "not-a-timestamp",
	}
	text := services.BuildInvoice(o, []repos.OrderItemRow{
		{Name: "Gold Hoop Earrings", Qty: 1, UnitPrice: 59.00, Subtotal: 59.00},
	})

	assert.NotContains(t, text, "Discount")
	assert.NotContains(t, text, "Delivery:")
	assert.NotContains(t, text, " / ") // no phone suffix on the bill-to line
	assert.Contains(t, text, "Placed:    not-a-timestamp")
}
