// Package memstore keeps companies and holdings in process memory, keyed by id.
// Every read and write copies, so callers never share state with the store.
package memstore

import (
	"context"
	"sort"
	"sync"

	"sharesreg-backend/internal/domain"

	"github.com/google/uuid"
)

type Store struct {
	mu        sync.RWMutex
	companies map[uuid.UUID]domain.Company
	holdings  map[uuid.UUID]map[uuid.UUID]*domain.Holding
}

func New() *Store {
	return &Store{
		companies: make(map[uuid.UUID]domain.Company),
		holdings:  make(map[uuid.UUID]map[uuid.UUID]*domain.Holding),
	}
}

// PutCompany adds or replaces a company record, assigning an id when missing.
func (s *Store) PutCompany(c domain.Company) domain.Company {
	if c.CompanyID == uuid.Nil {
		c.CompanyID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.CompanyID] = c
	return c
}

func (s *Store) FindCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	return &c, nil
}

func (s *Store) Holdings(ctx context.Context, companyID uuid.UUID) ([]*domain.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Holding, 0, len(s.holdings[companyID]))
	for _, h := range s.holdings[companyID] {
		out = append(out, h.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// Update holds the store's write lock while fn runs and keeps copies of the holdings it
// returns. Nothing is stored when fn fails.
func (s *Store) Update(ctx context.Context, companyID uuid.UUID, fn func(*domain.Company, []*domain.Holding) ([]*domain.Holding, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	company, ok := s.companies[companyID]
	if !ok {
		return domain.ErrCompanyNotFound
	}
	byID := s.holdings[companyID]
	current := make([]*domain.Holding, 0, len(byID))
	for _, h := range byID {
		current = append(current, h.Clone())
	}
	sort.Slice(current, func(i, j int) bool { return current[i].Position < current[j].Position })

	changed, err := fn(&company, current)
	if err != nil {
		return err
	}
	if byID == nil {
		byID = make(map[uuid.UUID]*domain.Holding)
		s.holdings[companyID] = byID
	}
	for _, h := range changed {
		byID[h.ID] = h.Clone()
	}
	return nil
}
