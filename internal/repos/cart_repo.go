package repos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// CartLineRow is one deduplicated line: a product plus a resolved variant
// selection, identified by variant_key.
type CartLineRow struct {
	VariantKey   string  `db:"variant_key"`
	ProductID    string  `db:"product_id"`
	Name         string  `db:"name"`
	VariantsJSON string  `db:"variants_json"`
	Qty          int     `db:"qty"`
	PriceAtAdd   float64 `db:"price_at_add"`
	Subtotal     float64 `db:"subtotal"`
}

// EnsureCart returns the session's cart id, creating the cart on first use.
// The cart id equals the session id.
func (r *CartRepo) EnsureCart(sessionID string) (string, error) {
	var cartID string
	err := r.db.Get(&cartID, `SELECT id FROM carts WHERE session_id = ?`, sessionID)
	if err == nil {
		return cartID, nil
	}
	now := time.Now().Format(time.RFC3339)
	if _, err := r.db.Exec(`INSERT INTO carts (id, session_id, updated_at) VALUES (?, ?, ?)`,
		sessionID, sessionID, now); err != nil {
		return "", err
	}
	return sessionID, nil
}

// UpsertLine adds qty to an existing line with the same variant key, or
// inserts a new line. The stored price never changes on increment.
func (r *CartRepo) UpsertLine(cartID, key, productID string, qty int, price float64, variantsJSON string) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(cart_id,variant_key,product_id,qty,price_at_add,variants_json,created_at)
		VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(cart_id,variant_key) DO UPDATE
		SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, cartID, key, productID, qty, price, variantsJSON)
	return err
}

// AdjustQty applies a signed delta to a line; a result of zero or below
// removes the line entirely. The delete runs first so the qty >= 1 check on
// the table never sees an intermediate value.
func (r *CartRepo) AdjustQty(cartID, key string, delta int) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		DELETE FROM cart_items WHERE cart_id = ? AND variant_key = ? AND qty + ? <= 0
	`, cartID, key, delta); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		UPDATE cart_items SET qty = qty + ?, updated_at = CURRENT_TIMESTAMP
		WHERE cart_id = ? AND variant_key = ?
	`, delta, cartID, key); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CartRepo) RemoveLine(cartID, key string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND variant_key = ?`, cartID, key)
	return err
}

func (r *CartRepo) Lines(cartID string) ([]CartLineRow, error) {
	rows := []CartLineRow{}
	err := r.db.Select(&rows, `
	  SELECT ci.variant_key, ci.product_id, p.name, COALESCE(ci.variants_json,'') AS variants_json,
	         ci.qty, ci.price_at_add, (ci.qty*ci.price_at_add) AS subtotal
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.cart_id = ?
	  ORDER BY ci.created_at, ci.variant_key
	`, cartID)
	return rows, err
}

// Clear drops every line and detaches the coupon.
func (r *CartRepo) Clear(cartID string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE carts SET coupon_code = '', updated_at = CURRENT_TIMESTAMP WHERE id = ?`, cartID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CartRepo) SetCoupon(cartID, code string) error {
	_, err := r.db.Exec(`UPDATE carts SET coupon_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, code, cartID)
	return err
}

func (r *CartRepo) CouponCode(cartID string) (string, error) {
	var code string
	err := r.db.Get(&code, `SELECT coupon_code FROM carts WHERE id = ?`, cartID)
	return code, err
}

func linkSession(tx *sqlx.Tx, userID, sid string) {
	_, _ = tx.Exec(`UPDATE sessions SET user_id = ?, last_seen = CURRENT_TIMESTAMP WHERE id = ?`, userID, sid)
}

// MergeForLogin folds a pre-login session cart into the user's cart and
// links the session to the user. Lines with the same variant key combine by
// quantity; the user cart's frozen prices win on conflict.
func (r *CartRepo) MergeForLogin(userID, sid string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var anonCart, ownedCart sql.NullString
	if err := tx.Get(&anonCart, `SELECT id FROM carts WHERE session_id = ?`, sid); err != nil && err != sql.ErrNoRows {
		return err
	}
	if err := tx.Get(&ownedCart, `SELECT id FROM carts WHERE user_id = ? ORDER BY updated_at DESC LIMIT 1`, userID); err != nil && err != sql.ErrNoRows {
		return err
	}

	switch {
	case !anonCart.Valid:
		// Nothing in this session yet; just link it.

	case !ownedCart.Valid || ownedCart.String == anonCart.String:
		// No prior user cart: adopt the anonymous one wholesale.
		if _, err := tx.Exec(`UPDATE carts SET user_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			userID, anonCart.String); err != nil {
			return err
		}

	default:
		if err := foldCartLines(tx, anonCart.String, ownedCart.String); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM carts WHERE id = ?`, anonCart.String); err != nil {
			return err
		}
	}

	linkSession(tx, userID, sid)
	return tx.Commit()
}

func foldCartLines(tx *sqlx.Tx, fromCart, intoCart string) error {
	type line struct {
		VariantKey   string  `db:"variant_key"`
		ProductID    string  `db:"product_id"`
		Qty          int     `db:"qty"`
		PriceAtAdd   float64 `db:"price_at_add"`
		VariantsJSON string  `db:"variants_json"`
	}
	var lines []line
	if err := tx.Select(&lines, `
	  SELECT variant_key, product_id, qty, price_at_add, COALESCE(variants_json,'') AS variants_json
	  FROM cart_items WHERE cart_id = ?`, fromCart); err != nil {
		return err
	}
	for _, it := range lines {
		if _, err := tx.Exec(`
		  INSERT INTO cart_items (cart_id, variant_key, product_id, qty, price_at_add, variants_json, created_at, updated_at)
		  VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		  ON CONFLICT(cart_id, variant_key) DO UPDATE
		  SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP`,
			intoCart, it.VariantKey, it.ProductID, it.Qty, it.PriceAtAdd, it.VariantsJSON); err != nil {
			return err
		}
	}
	return nil
}
