package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db"
	"github.com/luxeleather/storefront-backend/pkg/db/models"
	pkgerrors "github.com/luxeleather/storefront-backend/pkg/errors"
)

// Service manages the customer's saved products. Saving the same product
// twice is a no-op, as is removing a product that was never saved.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return items, nil
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	if _, err := s.repo.FindActiveProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}

	item, err := s.repo.Create(ctx, &models.WishlistItem{
		UserID:    userID,
		ProductID: productID,
	})
	if err != nil {
		// A concurrent or repeat save hits the unique index; return the
		// existing row instead of erroring.
		if db.IsUniqueViolation(err, "idx_wishlist_items_user_product") {
			existing, findErr := s.repo.Find(ctx, userID, productID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "find wishlist item")
			}
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist item")
	}
	return item, nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if _, err := s.repo.Delete(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	return nil
}
