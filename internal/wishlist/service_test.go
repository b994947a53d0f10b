package wishlist

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
	pkgerrors "github.com/luxeleather/storefront-backend/pkg/errors"
)

type wishKey struct {
	userID    uuid.UUID
	productID uuid.UUID
}

type stubWishlistRepo struct {
	items          map[wishKey]*models.WishlistItem
	products       map[uuid.UUID]*models.Product
	findProductErr error
}

func newStubWishlistRepo() *stubWishlistRepo {
	return &stubWishlistRepo{
		items:    make(map[wishKey]*models.WishlistItem),
		products: make(map[uuid.UUID]*models.Product),
	}
}

func (s *stubWishlistRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubWishlistRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	var out []models.WishlistItem
	for key, item := range s.items {
		if key.userID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubWishlistRepo) Find(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	if item, ok := s.items[wishKey{userID, productID}]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubWishlistRepo) Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	key := wishKey{item.UserID, item.ProductID}
	if _, exists := s.items[key]; exists {
		return nil, errors.New(`duplicate key value violates unique constraint "idx_wishlist_items_user_product"`)
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	copied := *item
	s.items[key] = &copied
	return item, nil
}

func (s *stubWishlistRepo) Delete(ctx context.Context, userID, productID uuid.UUID) (int64, error) {
	key := wishKey{userID, productID}
	if _, ok := s.items[key]; !ok {
		return 0, nil
	}
	delete(s.items, key)
	return 1, nil
}

func (s *stubWishlistRepo) FindActiveProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if s.findProductErr != nil {
		return nil, s.findProductErr
	}
	if product, ok := s.products[productID]; ok && product.IsActive {
		copied := *product
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func seedWishProduct(repo *stubWishlistRepo, active bool) uuid.UUID {
	productID := uuid.New()
	repo.products[productID] = &models.Product{ID: productID, Name: "Heritage Tote", IsActive: active}
	return productID
}

func TestAddSavesProduct(t *testing.T) {
	repo := newStubWishlistRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()
	productID := seedWishProduct(repo, true)

	item, err := svc.Add(context.Background(), userID, productID)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if item.ProductID != productID {
		t.Fatalf("unexpected product %s", item.ProductID)
	}

	listed, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 saved product, got %d", len(listed))
	}
}

func TestAddIsIdempotent(t *testing.T) {
	repo := newStubWishlistRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()
	productID := seedWishProduct(repo, true)

	first, err := svc.Add(context.Background(), userID, productID)
	if err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	second, err := svc.Add(context.Background(), userID, productID)
	if err != nil {
		t.Fatalf("repeat Add failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("repeat Add must return the existing row")
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected a single row, got %d", len(repo.items))
	}
}

func TestAddRejectsUnknownOrInactiveProduct(t *testing.T) {
	repo := newStubWishlistRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()

	_, err := svc.Add(context.Background(), userID, uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}

	inactive := seedWishProduct(repo, false)
	_, err = svc.Add(context.Background(), userID, inactive)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for inactive product, got %v", err)
	}
}

func TestAddTreatsWrappedMissingRowAsNotFound(t *testing.T) {
	repo := newStubWishlistRepo()
	// Drivers and decorators wrap gorm's sentinel; the mapping must survive.
	repo.findProductErr = fmt.Errorf("loading product: %w", gorm.ErrRecordNotFound)
	svc := newTestService(t, repo)

	_, err := svc.Add(context.Background(), uuid.New(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for wrapped missing row, got %v", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	repo := newStubWishlistRepo()
	svc := newTestService(t, repo)
	userID := uuid.New()
	productID := seedWishProduct(repo, true)

	if _, err := svc.Add(context.Background(), userID, productID); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := svc.Remove(context.Background(), userID, productID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	// Removing again is silent.
	if err := svc.Remove(context.Background(), userID, productID); err != nil {
		t.Fatalf("repeat Remove failed: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatal("wishlist not emptied")
	}
}

func TestWishlistsAreIsolatedPerUser(t *testing.T) {
	repo := newStubWishlistRepo()
	svc := newTestService(t, repo)
	productID := seedWishProduct(repo, true)
	alice := uuid.New()
	bob := uuid.New()

	if _, err := svc.Add(context.Background(), alice, productID); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	listed, err := svc.List(context.Background(), bob)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 0 {
		t.Fatal("users must not see each other's wishlists")
	}
}
