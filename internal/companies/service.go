// Package companies manages tenants. Every other record belongs to exactly
// one company.
package companies

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// Service manages companies.
type Service struct {
	store  *store.Store
	logger *zap.Logger
}

// NewService creates a companies Service.
func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Create adds a company with a unique name.
func (s *Service) Create(name string) (model.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Company{}, model.NewValidationError("name", "must not be empty")
	}
	if n := utf8.RuneCountInString(name); n > model.MaxNameLength {
		return model.Company{}, model.NewValidationError("name", fmt.Sprintf("is %d characters, at most %d allowed", n, model.MaxNameLength))
	}

	var c model.Company
	err := s.store.Transaction(func(tx *store.Tx) error {
		id, err := tx.InsertCompany(name)
		if err != nil {
			return err
		}
		c = model.Company{ID: id, Name: name}
		return nil
	})
	if err != nil {
		return model.Company{}, err
	}
	s.logger.Info("company created", zap.Int64("company_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// List returns all companies by name.
func (s *Service) List() ([]model.Company, error) {
	return s.store.ListCompanies()
}

// Get returns a company by ID.
func (s *Service) Get(id int64) (model.Company, error) {
	return s.store.GetCompany(id)
}

// Resolve finds a company by exact name, falling back to a numeric ID.
func (s *Service) Resolve(ref string) (model.Company, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Company{}, model.NewValidationError("company", "is required")
	}
	c, err := s.store.GetCompanyByName(ref)
	if err == nil || !errors.Is(err, model.ErrNotFound) {
		return c, err
	}
	if n, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		return s.store.GetCompany(n)
	}
	return model.Company{}, fmt.Errorf("company %q: %w", ref, model.ErrNotFound)
}

// Delete removes a company and everything it owns in one atomic unit.
func (s *Service) Delete(id int64) error {
	err := s.store.Transaction(func(tx *store.Tx) error {
		return tx.DeleteCompany(id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("company deleted", zap.Int64("company_id", id))
	return nil
}
