package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"aurelia/internal/domain"
)

type CouponRepo struct{ db *sqlx.DB }

func NewCouponRepo(db *sqlx.DB) *CouponRepo { return &CouponRepo{db: db} }

// Get looks a code up case-insensitively. Codes are stored uppercased.
func (r *CouponRepo) Get(code string) (domain.Coupon, error) {
	var c domain.Coupon
	err := r.db.Get(&c, `
	  SELECT code, rate, description, min_purchase, expires_at, active
	  FROM coupons WHERE code = ?
	`, strings.ToUpper(strings.TrimSpace(code)))
	return c, err
}

func (r *CouponRepo) List() ([]domain.Coupon, error) {
	var out []domain.Coupon
	err := r.db.Select(&out, `
	  SELECT code, rate, description, min_purchase, expires_at, active
	  FROM coupons ORDER BY code
	`)
	return out, err
}

func (r *CouponRepo) Upsert(c domain.Coupon) error {
	_, err := r.db.Exec(`
	  INSERT INTO coupons(code, rate, description, min_purchase, expires_at, active)
	  VALUES(?,?,?,?,?,?)
	  ON CONFLICT(code) DO UPDATE SET
	    rate=excluded.rate, description=excluded.description,
	    min_purchase=excluded.min_purchase, expires_at=excluded.expires_at,
	    active=excluded.active
	`, strings.ToUpper(strings.TrimSpace(c.Code)), c.Rate, c.Description, c.MinPurchase, c.ExpiresAt, c.Active)
	return err
}

func (r *CouponRepo) Delete(code string) error {
	_, err := r.db.Exec(`DELETE FROM coupons WHERE code = ?`, strings.ToUpper(strings.TrimSpace(code)))
	return err
}
