package repos

import (
	"github.com/jmoiron/sqlx"

	"aurelia/internal/domain"
)

const userCols = `id, email, name, password_hash, role`

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

func (r *UserRepo) get(query string, arg string) (*domain.User, error) {
	var u domain.User
	if err := r.DB.Get(&u, query, arg); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	return r.get(`SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER(?)`, email)
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	return r.get(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) Create(u domain.User) error {
	_, err := r.DB.Exec(`INSERT INTO users (id, email, name, password_hash, role) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.Hash, u.Role)
	return err
}

// List returns customer accounts for the admin screen; admins stay hidden.
func (r *UserRepo) List() ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, `SELECT `+userCols+` FROM users WHERE role != 'ADMIN' ORDER BY email`)
	return out, err
}

// BindSession ties a browser session to a user on login. Re-login over an
// existing session just repoints it.
func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`
	  INSERT INTO sessions (id, user_id, last_seen) VALUES (?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, last_seen = CURRENT_TIMESTAMP`,
		sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	return r.get(`
	  SELECT u.id, u.email, u.name, u.password_hash, u.role
	  FROM sessions s JOIN users u ON u.id = s.user_id
	  WHERE s.id = ?`, sid)
}

// UnbindSession logs the session out without deleting it, so the anonymous
// cart tied to the same sid survives.
func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`UPDATE sessions SET user_id = NULL, last_seen = CURRENT_TIMESTAMP WHERE id = ?`, sid)
	return err
}

// DeleteUserCascade cancels the user's open orders and removes session-keyed
// data (sessions, carts, wishlists, compare lists) while keeping order rows
// for audit.
func (r *UserRepo) DeleteUserCascade(userID string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var sids []string
	if err := tx.Select(&sids, `SELECT id FROM sessions WHERE user_id = ?`, userID); err != nil {
		return err
	}

	cascade := []string{
		`UPDATE orders SET status='CANCELLED' WHERE session_id IN (?) AND status NOT IN ('DELIVERED','CANCELLED')`,
		`DELETE FROM carts WHERE id IN (?)`,
		`DELETE FROM wishlists WHERE id IN (?)`,
		`DELETE FROM compare_lists WHERE id IN (?)`,
		`DELETE FROM sessions WHERE id IN (?)`,
	}
	for _, stmt := range cascade {
		if len(sids) == 0 {
			break
		}
		q, args, err := sqlx.In(stmt, sids)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(q, args...); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`DELETE FROM users WHERE id = ?`, userID); err != nil {
		return err
	}
	return tx.Commit()
}
