package services

import (
	"errors"

	"aurelia/internal/repos"
)

// CompareLimit caps the compare list. A fourth insertion is rejected, never
// truncated: the existing three members stay untouched.
const CompareLimit = 3

var ErrCompareFull = errors.New("you can compare up to 3 products")

type CompareService struct {
	Repo *repos.CompareRepo
}

func NewCompareService(r *repos.CompareRepo) *CompareService { return &CompareService{Repo: r} }

func (s *CompareService) Add(sessionID, productID string) error {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return err
	}
	has, err := s.Repo.Has(id, productID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	n, err := s.Repo.Count(id)
	if err != nil {
		return err
	}
	if n >= CompareLimit {
		return ErrCompareFull
	}
	return s.Repo.Add(id, productID)
}

func (s *CompareService) Remove(sessionID, productID string) error {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return err
	}
	return s.Repo.Remove(id, productID)
}

func (s *CompareService) List(sessionID string) ([]repos.CompareRow, error) {
	id, err := s.Repo.Ensure(sessionID)
	if err != nil {
		return nil, err
	}
	return s.Repo.List(id)
}
