package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderRow is the immutable order header written at placement. Only status
// is updated afterwards (by admin action).
type OrderRow struct {
	ID            string  `db:"id"`
	Number        string  `db:"number"`
	SessionID     string  `db:"session_id"`
	UserID        string  `db:"user_id"`
	CustomerName  string  `db:"customer_name"`
	CustomerEmail string  `db:"customer_email"`
	Phone         string  `db:"phone"`
	Address       string  `db:"address"`
	City          string  `db:"city"`
	State         string  `db:"state"`
	PostalCode    string  `db:"postal_code"`
	PaymentMethod string  `db:"payment_method"`
	CouponCode    string  `db:"coupon_code"`
	Subtotal      float64 `db:"subtotal"`
	Discount      float64 `db:"discount"`
	Shipping      float64 `db:"shipping"`
	Total         float64 `db:"total"`
	Status        string  `db:"status"`
	PlacedAt      string  `db:"placed_at"`
	EstDelivery   string  `db:"est_delivery"`
}

type OrderItemRow struct {
	VariantKey  string  `db:"variant_key"`
	ProductID   string  `db:"product_id"`
	Name        string  `db:"name"`
	VariantDesc string  `db:"variant_desc"`
	Qty         int     `db:"qty"`
	UnitPrice   float64 `db:"unit_price"`
	Subtotal    float64 `db:"subtotal"`
}

type OrderSummary struct {
	ID            string  `db:"id"`
	Number        string  `db:"number"`
	SessionID     string  `db:"session_id"`
	CustomerName  string  `db:"customer_name"`
	CustomerEmail string  `db:"customer_email"`
	Total         float64 `db:"total"`
	Status        string  `db:"status"`
	PlacedAt      string  `db:"placed_at"`
}

// Create inserts the order header, its line items and the matching stock
// decrements in one transaction: an order must never exist without its
// inventory taken, and a failed insert must not cost any stock. taken maps
// product id to the total quantity across the order's lines.
func (r *OrderRepo) Create(o OrderRow, items []OrderItemRow, taken map[string]int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExec(`
	  INSERT INTO orders
	    (id, number, session_id, customer_name, customer_email, phone, address, city, state, postal_code,
	     payment_method, coupon_code, subtotal, discount, shipping, total, status, placed_at, est_delivery)
	  VALUES
	    (:id, :number, :session_id, :customer_name, :customer_email, :phone, :address, :city, :state, :postal_code,
	     :payment_method, :coupon_code, :subtotal, :discount, :shipping, :total, :status, :placed_at, :est_delivery)
	`, o); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, variant_key, product_id, name, variant_desc, qty, unit_price)
		  VALUES(?, ?, ?, ?, ?, ?, ?)
		`, o.ID, it.VariantKey, it.ProductID, it.Name, it.VariantDesc, it.Qty, it.UnitPrice); err != nil {
			return err
		}
	}
	for pid, qty := range taken {
		res, err := tx.Exec(`
		  UPDATE products SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		  WHERE id = ? AND stock >= ?
		`, qty, pid, qty)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("insufficient stock for %s", pid)
		}
	}
	return tx.Commit()
}

const orderCols = `
  o.id, o.number, o.session_id, COALESCE(s.user_id,'') AS user_id,
  o.customer_name, o.customer_email, COALESCE(o.phone,'') AS phone,
  COALESCE(o.address,'') AS address, COALESCE(o.city,'') AS city,
  COALESCE(o.state,'') AS state, COALESCE(o.postal_code,'') AS postal_code,
  o.payment_method, o.coupon_code, o.subtotal, o.discount, o.shipping, o.total,
  o.status, o.placed_at, COALESCE(o.est_delivery,'') AS est_delivery`

func (r *OrderRepo) Get(orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	if err := r.db.Get(&o, `
		SELECT `+orderCols+`
		FROM orders o
		LEFT JOIN sessions s ON s.id = o.session_id
		WHERE o.id = ?
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	var items []OrderItemRow
	if err := r.db.Select(&items, `
		SELECT variant_key, product_id, name, variant_desc, qty, unit_price,
		       (qty * unit_price) AS subtotal
		FROM order_items
		WHERE order_id = ?
		ORDER BY name, variant_key
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	return o, items, nil
}

const summaryCols = `id, number, session_id, customer_name, customer_email, total, status, placed_at`

// ListLatest feeds the admin order board, newest first.
func (r *OrderRepo) ListLatest(limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderSummary
	err := r.db.Select(&out,
		`SELECT `+summaryCols+` FROM orders ORDER BY datetime(placed_at) DESC LIMIT ?`, limit)
	return out, err
}

// ListByUser returns orders for a given user via session linkage.
func (r *OrderRepo) ListByUser(userID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out, `
	  SELECT o.id, o.number, o.session_id, o.customer_name, o.customer_email, o.total, o.status, o.placed_at
	  FROM orders o JOIN sessions s ON s.id = o.session_id
	  WHERE s.user_id = ?
	  ORDER BY datetime(o.placed_at) DESC`, userID)
	return out, err
}

// ListBySession covers anonymous or pre-login orders.
func (r *OrderRepo) ListBySession(sessionID string) ([]OrderSummary, error) {
	var out []OrderSummary
	err := r.db.Select(&out,
		`SELECT `+summaryCols+` FROM orders WHERE session_id = ? ORDER BY datetime(placed_at) DESC`, sessionID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}
