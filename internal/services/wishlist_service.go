package services

import "aurelia/internal/repos"

// WishlistService wraps the repo with the ensure-then-act pattern: every
// operation lazily creates the session's wishlist on first touch.
type WishlistService struct {
	Repo *repos.WishlistRepo
}

func NewWishlistService(r *repos.WishlistRepo) *WishlistService { return &WishlistService{Repo: r} }

func (s *WishlistService) withList(sessionID string, f func(id string) error) error {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return err
	}
	return f(id)
}

func (s *WishlistService) Save(sessionID, productID string) error {
	return s.withList(sessionID, func(id string) error { return s.Repo.Add(id, productID) })
}

func (s *WishlistService) Unsave(sessionID, productID string) error {
	return s.withList(sessionID, func(id string) error { return s.Repo.Remove(id, productID) })
}

// Toggle flips membership and reports the new state.
func (s *WishlistService) Toggle(sessionID, productID string) (saved bool, err error) {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return false, err
	}
	has, err := s.Repo.Has(id, productID)
	if err != nil {
		return false, err
	}
	if has {
		return false, s.Repo.Remove(id, productID)
	}
	return true, s.Repo.Add(id, productID)
}

func (s *WishlistService) List(sessionID string) ([]repos.WishlistRow, error) {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Repo.List(id)
}
