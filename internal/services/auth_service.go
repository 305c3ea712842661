package services

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"aurelia/internal/domain"
	"aurelia/internal/repos"
)

var (
	ErrBadCreds   = errors.New("invalid email or password")
	ErrEmailTaken = errors.New("an account with this email already exists")
)

type AuthService struct {
	Users *repos.UserRepo
	Carts *repos.CartRepo
}

// Login verifies credentials and binds the browser session to the account.
// Lookup and hash failures collapse into one error so responses never reveal
// whether the email exists.
func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	// Fold a pre-login cart into the user's cart; losing it on login is
	// worse than a merge that double-counts nothing.
	if s.Carts != nil {
		_ = s.Carts.MergeForLogin(u.ID, sid)
	}
	return u, nil
}

func (s *AuthService) Register(sid, email, name, password string) (*domain.User, error) {
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := domain.User{
		ID:    "u-" + uuid.NewString(),
		Email: email,
		Name:  name,
		Hash:  string(hash),
		Role:  "USER",
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) Logout(sid string) error { return s.Users.UnbindSession(sid) }

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) { return s.Users.SessionUser(sid) }
