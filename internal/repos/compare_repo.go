package repos

import (
	"time"

	"github.com/jmoiron/sqlx"
)

type CompareRepo struct{ db *sqlx.DB }

func NewCompareRepo(db *sqlx.DB) *CompareRepo { return &CompareRepo{db: db} }

func (r *CompareRepo) Ensure(sessionID string) (string, error) {
	var id string
	if err := r.db.Get(&id, `SELECT id FROM compare_lists WHERE session_id=?`, sessionID); err == nil {
		return id, nil
	}
	_, err := r.db.Exec(`INSERT INTO compare_lists(id,session_id,updated_at) VALUES(?,?,?)`,
		sessionID, sessionID, time.Now().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

func (r *CompareRepo) Count(compareID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM compare_items WHERE compare_id=?`, compareID)
	return n, err
}

func (r *CompareRepo) Has(compareID, productID string) (bool, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM compare_items WHERE compare_id=? AND product_id=?`, compareID, productID); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CompareRepo) Add(compareID, productID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO compare_items(compare_id, product_id, created_at)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(compare_id, product_id) DO NOTHING
	`, compareID, productID)
	return err
}

func (r *CompareRepo) Remove(compareID, productID string) error {
	_, err := r.db.Exec(`DELETE FROM compare_items WHERE compare_id=? AND product_id=?`, compareID, productID)
	return err
}

type CompareRow struct {
	ProductID     string  `db:"product_id"`
	Name          string  `db:"name"`
	CategoryID    string  `db:"category_id"`
	Price         float64 `db:"price"`
	OriginalPrice float64 `db:"original_price"`
	Rating        float64 `db:"rating"`
	Stock         int     `db:"stock"`
	VariantsJSON  string  `db:"variants_json"`
}

func (r *CompareRepo) List(compareID string) ([]CompareRow, error) {
	var out []CompareRow
	err := r.db.Select(&out, `
	  SELECT p.id AS product_id, p.name, p.category_id, p.price, p.original_price,
	         p.rating, p.stock, COALESCE(p.variants_json,'') AS variants_json
	  FROM compare_items ci
	  JOIN products p ON p.id = ci.product_id
	  WHERE ci.compare_id = ?
	  ORDER BY ci.created_at
	`, compareID)
	return out, err
}
