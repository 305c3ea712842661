package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// WishlistRepo stores per-session saved products. The wishlist id doubles as
// the session id, so Ensure is an upsert keyed on the sid.
type WishlistRepo struct{ db *sqlx.DB }

func NewWishlistRepo(db *sqlx.DB) *WishlistRepo { return &WishlistRepo{db: db} }

func (r *WishlistRepo) Ensure(sessionID string) (string, error) {
	var id string
	err := r.db.Get(&id, `SELECT id FROM wishlists WHERE session_id = ?`, sessionID)
	if err == nil {
		return id, nil
	}
	now := time.Now().Format(time.RFC3339)
	if _, err := r.db.Exec(`INSERT INTO wishlists (id, session_id, updated_at) VALUES (?, ?, ?)`,
		sessionID, sessionID, now); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Add is idempotent: saving an already-saved product is a no-op.
func (r *WishlistRepo) Add(wishlistID, productID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO wishlist_items (wishlist_id, product_id, created_at)
	  VALUES (?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(wishlist_id, product_id) DO NOTHING`,
		wishlistID, productID)
	return err
}

func (r *WishlistRepo) Remove(wishlistID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM wishlist_items WHERE wishlist_id = ? AND product_id = ?`,
		wishlistID, productID)
	return err
}

func (r *WishlistRepo) Has(wishlistID, productID string) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM wishlist_items WHERE wishlist_id = ? AND product_id = ?`,
		wishlistID, productID)
	return n > 0, err
}

type WishlistRow struct {
	ProductID     string  `db:"product_id"`
	Name          string  `db:"name"`
	Price         float64 `db:"price"`
	OriginalPrice float64 `db:"original_price"`
	Stock         int     `db:"stock"`
	Active        bool    `db:"active"`
}

func (r *WishlistRepo) List(wishlistID string) ([]WishlistRow, error) {
	var out []WishlistRow
	err := r.db.Select(&out, `
	  SELECT p.id AS product_id, p.name, p.price, p.original_price, p.stock, p.active
	  FROM wishlist_items wi JOIN products p ON p.id = wi.product_id
	  WHERE wi.wishlist_id = ?
	  ORDER BY p.name`,
		wishlistID)
	return out, err
}
