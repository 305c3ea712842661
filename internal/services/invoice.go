package services

import (
	"fmt"
	"strings"
	"time"

	"aurelia/internal/repos"
)

// BuildInvoice renders a plain-text, line-itemized summary of a placed
// order, suitable for download. Formatting only; there is no parser for
// this output.
func BuildInvoice(o repos.OrderRow, items []repos.OrderItemRow) string {
	var b strings.Builder

	b.WriteString("AURELIA FINE JEWELLERY\n")
	b.WriteString(strings.Repeat("=", 64) + "\n")
	fmt.Fprintf(&b, "Invoice for order %s\n", o.Number)
	fmt.Fprintf(&b, "Placed:    %s\n", invoiceDate(o.PlacedAt))
	if o.EstDelivery != "" {
		fmt.Fprintf(&b, "Delivery:  %s (estimated)\n", invoiceDate(o.EstDelivery))
	}
	fmt.Fprintf(&b, "Status:    %s\n", o.Status)
	fmt.Fprintf(&b, "Payment:   %s\n\n", o.PaymentMethod)

	b.WriteString("Bill to:\n")
	fmt.Fprintf(&b, "  %s\n", o.CustomerName)
	fmt.Fprintf(&b, "  %s\n", o.Address)
	fmt.Fprintf(&b, "  %s, %s %s\n", o.City, o.State, o.PostalCode)
	fmt.Fprintf(&b, "  %s", o.CustomerEmail)
	if o.Phone != "" {
		fmt.Fprintf(&b, " / %s", o.Phone)
	}
	b.WriteString("\n\nItems:\n")

	for _, it := range items {
		name := it.Name
		if it.VariantDesc != "" {
			name += " (" + it.VariantDesc + ")"
		}
		fmt.Fprintf(&b, "  %-42s %3d x %9.2f = %10.2f\n", name, it.Qty, it.UnitPrice, it.Subtotal)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %-48s %12.2f\n", "Subtotal:", o.Subtotal)
	if o.Discount > 0 {
		label := "Discount:"
		if o.CouponCode != "" {
			label = "Discount (" + o.CouponCode + "):"
		}
		fmt.Fprintf(&b, "  %-48s %12.2f\n", label, -o.Discount)
	}
	fmt.Fprintf(&b, "  %-48s %12.2f\n", "Shipping:", o.Shipping)
	fmt.Fprintf(&b, "  %-48s %12.2f\n", "Total:", o.Total)

	return b.String()
}

// invoiceDate shortens an RFC3339 timestamp to its date; anything else is
// passed through untouched.
func invoiceDate(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.Format("2006-01-02")
	}
	return ts
}
