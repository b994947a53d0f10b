package addresses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/enums"
	pkgerrors "github.com/luxeleather/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input carries an address create or full update.
type Input struct {
	Kind         string  `json:"kind" validate:"required,oneof=shipping billing"`
	FirstName    string  `json:"first_name" validate:"required"`
	LastName     string  `json:"last_name" validate:"required"`
	Company      *string `json:"company"`
	AddressLine1 string  `json:"address_line_1" validate:"required"`
	AddressLine2 *string `json:"address_line_2"`
	City         string  `json:"city" validate:"required"`
	State        string  `json:"state" validate:"required"`
	PostalCode   string  `json:"postal_code" validate:"required"`
	Country      string  `json:"country"`
	Phone        *string `json:"phone"`
	IsDefault    bool    `json:"is_default"`
}

// Service manages the customer's saved addresses. At most one address per
// (user, kind) is the default at any moment.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*models.Address, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an address service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	addresses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return addresses, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	return s.loadOwned(ctx, s.repo, userID, addressID)
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	address := buildAddress(userID, kind, input)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountByKind(ctx, userID, kind)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
		}
		// The first address of a kind is always the default.
		if count == 0 {
			address.IsDefault = true
		}
		if address.IsDefault {
			if err := repo.ClearDefault(ctx, userID, kind); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default")
			}
		}

		if _, err := repo.Create(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*models.Address, error) {
	kind, err := parseKind(input.Kind)
	if err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := s.loadOwned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}

		if input.IsDefault && (!existing.IsDefault || existing.Kind != kind) {
			if err := repo.ClearDefault(ctx, userID, kind); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default")
			}
		}

		updates := map[string]any{
			"kind":           kind,
			"first_name":     input.FirstName,
			"last_name":      input.LastName,
			"company":        input.Company,
			"address_line_1": input.AddressLine1,
			"address_line_2": input.AddressLine2,
			"city":           input.City,
			"state":          input.State,
			"postal_code":    input.PostalCode,
			"country":        countryOrDefault(input.Country),
			"phone":          input.Phone,
			"is_default":     input.IsDefault,
		}
		if err := repo.Update(ctx, addressID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadOwned(ctx, s.repo, userID, addressID)
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := s.loadOwned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, addressID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
		}

		// Deleting the default promotes the oldest remaining address of
		// the same kind, so the kind keeps a default whenever possible.
		if existing.IsDefault {
			remaining, err := repo.ListByUser(ctx, userID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
			}
			for _, candidate := range remaining {
				if candidate.Kind == existing.Kind {
					if err := repo.Update(ctx, candidate.ID, map[string]any{"is_default": true}); err != nil {
						return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote default")
					}
					break
				}
			}
		}
		return nil
	})
}

func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := s.loadOwned(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if existing.IsDefault {
			return nil
		}

		if err := repo.ClearDefault(ctx, userID, existing.Kind); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default")
		}
		if err := repo.Update(ctx, addressID, map[string]any{"is_default": true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set default")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadOwned(ctx, s.repo, userID, addressID)
}

func (s *service) loadOwned(ctx context.Context, repo Repository, userID, addressID uuid.UUID) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if addressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}

	address, err := repo.Find(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find address")
	}
	if address.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return address, nil
}

func buildAddress(userID uuid.UUID, kind enums.AddressKind, input Input) *models.Address {
	return &models.Address{
		UserID:       userID,
		Kind:         kind,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Company:      input.Company,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Country:      countryOrDefault(input.Country),
		Phone:        input.Phone,
		IsDefault:    input.IsDefault,
	}
}

func parseKind(value string) (enums.AddressKind, error) {
	kind, err := enums.ParseAddressKind(value)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "kind must be shipping or billing")
	}
	return kind, nil
}

func validateInput(input Input) error {
	for field, value := range map[string]string{
		"first_name":     input.FirstName,
		"last_name":      input.LastName,
		"address_line_1": input.AddressLine1,
		"city":           input.City,
		"state":          input.State,
		"postal_code":    input.PostalCode,
	} {
		if strings.TrimSpace(value) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
		}
	}
	return nil
}

func countryOrDefault(country string) string {
	if strings.TrimSpace(country) == "" {
		return "US"
	}
	return country
}
