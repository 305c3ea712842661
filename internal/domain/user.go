package domain

// User is a registered account. Role is either USER or ADMIN; there is no
// finer-grained permission model.
type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == "ADMIN" }
