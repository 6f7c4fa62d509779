// Package attributes manages user-defined fields that can be attached to
// transaction details.
package attributes

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// Service manages a company's attributes and their values.
type Service struct {
	store  *store.Store
	logger *zap.Logger
}

// NewService creates an attributes Service.
func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Create defines an attribute. Choices are only meaningful for
// AttributeChoice and must be non-empty for it.
func (s *Service) Create(companyID int64, name string, kind model.AttributeKind, choices []string) (model.Attribute, error) {
	a := model.Attribute{CompanyID: companyID, Name: strings.TrimSpace(name), Kind: kind}
	if a.Name == "" {
		return a, model.NewValidationError("name", "must not be empty")
	}
	if kind < model.AttributeText || kind > model.AttributeDate {
		return a, model.NewValidationError("kind", fmt.Sprintf("unknown attribute kind %d", int(kind)))
	}

	var cleaned []string
	for _, c := range choices {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if strings.Contains(c, ";") {
			return a, model.NewValidationError("choices", fmt.Sprintf("choice %q must not contain ';'", c))
		}
		cleaned = append(cleaned, c)
	}
	if kind == model.AttributeChoice && len(cleaned) == 0 {
		return a, model.NewValidationError("choices", "a choice attribute needs at least one choice")
	}
	a.Metadata = strings.Join(cleaned, ";")

	err := s.store.Transaction(func(tx *store.Tx) error {
		if _, err := tx.GetCompany(companyID); err != nil {
			return err
		}
		var err error
		a.ID, err = tx.InsertAttribute(a)
		return err
	})
	if err != nil {
		return model.Attribute{}, err
	}
	s.logger.Info("attribute created", zap.Int64("company_id", companyID), zap.Int64("attribute_id", a.ID), zap.Stringer("kind", kind))
	return a, nil
}

// Set stores value for the attribute on a detail. The detail's account must
// belong to the attribute's company, and value must parse for the
// attribute's kind.
func (s *Service) Set(companyID, detailID, attributeID int64, value string) error {
	err := s.store.Transaction(func(tx *store.Tx) error {
		attr, err := tx.GetAttribute(companyID, attributeID)
		if err != nil {
			return err
		}
		detail, err := tx.GetDetail(detailID)
		if err != nil {
			return err
		}
		account, err := tx.GetAccount(detail.AccountID)
		if err != nil {
			return err
		}
		if account.CompanyID != attr.CompanyID {
			return model.CrossCompanyError{Index: -1, AccountID: account.ID, AccountCompanyID: account.CompanyID, CompanyID: attr.CompanyID}
		}

		normalized, err := Normalize(attr, value)
		if err != nil {
			return err
		}
		return tx.SetAttributeValue(model.AttributeValue{DetailID: detailID, AttributeID: attributeID, Value: normalized})
	})
	if err != nil {
		s.logger.Debug("attribute value rejected", zap.Int64("detail_id", detailID), zap.Int64("attribute_id", attributeID), zap.Error(err))
		return err
	}
	s.logger.Info("attribute value set", zap.Int64("company_id", companyID), zap.Int64("detail_id", detailID), zap.Int64("attribute_id", attributeID))
	return nil
}

// Normalize checks value against the attribute's kind and returns the form
// it is stored in.
func Normalize(attr model.Attribute, value string) (string, error) {
	value = strings.TrimSpace(value)
	invalid := func(msg string) error {
		return model.NewValidationError("value", fmt.Sprintf("%s: %s", attr.Name, msg))
	}

	switch attr.Kind {
	case model.AttributeText:
		return value, nil
	case model.AttributeNumber:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return "", invalid(fmt.Sprintf("%q is not a number", value))
		}
		return d.String(), nil
	case model.AttributeDate:
		d, err := time.Parse("2006-01-02", value)
		if err != nil {
			return "", invalid(fmt.Sprintf("%q is not a YYYY-MM-DD date", value))
		}
		return d.Format("2006-01-02"), nil
	case model.AttributeChoice:
		if !slices.Contains(attr.Choices(), value) {
			return "", invalid(fmt.Sprintf("%q is not one of %s", value, strings.Join(attr.Choices(), ", ")))
		}
		return value, nil
	case model.AttributeArray:
		var items []string
		for _, item := range strings.Split(value, ";") {
			item = strings.TrimSpace(item)
			if item == "" {
				return "", invalid("array items must not be empty")
			}
			items = append(items, item)
		}
		return strings.Join(items, ";"), nil
	}
	return "", invalid(fmt.Sprintf("unknown kind %d", int(attr.Kind)))
}

// List returns the company's attributes.
func (s *Service) List(companyID int64) ([]model.Attribute, error) {
	return s.store.ListAttributes(companyID)
}

// Values returns the attribute values stored on a detail of the company.
func (s *Service) Values(companyID, detailID int64) ([]model.AttributeValue, error) {
	detail, err := s.store.GetDetail(detailID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetTransaction(companyID, detail.TransactionID); err != nil {
		return nil, fmt.Errorf("detail %d: %w", detailID, model.ErrNotFound)
	}
	return s.store.ListAttributeValues(detailID)
}
