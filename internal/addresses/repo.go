package addresses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db/models"
	"github.com/luxeleather/storefront-backend/pkg/enums"
)

// Repository defines persistence operations for the address book.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Find(ctx context.Context, addressID uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) (*models.Address, error)
	Update(ctx context.Context, addressID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, addressID uuid.UUID) error
	ClearDefault(ctx context.Context, userID uuid.UUID, kind enums.AddressKind) error
	CountByKind(ctx context.Context, userID uuid.UUID, kind enums.AddressKind) (int64, error)
	FindDefault(ctx context.Context, userID uuid.UUID, kind enums.AddressKind) (*models.Address, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the GORM-backed address repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (r *repository) Find(ctx context.Context, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("id = ?", addressID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) Create(ctx context.Context, address *models.Address) (*models.Address, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

func (r *repository) Update(ctx context.Context, addressID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ?", addressID).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, addressID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", addressID).
		Delete(&models.Address{}).Error
}

func (r *repository) ClearDefault(ctx context.Context, userID uuid.UUID, kind enums.AddressKind) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND kind = ? AND is_default = ?", userID, kind, true).
		Update("is_default", false).Error
}

func (r *repository) CountByKind(ctx context.Context, userID uuid.UUID, kind enums.AddressKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Count(&count).Error
	return count, err
}

func (r *repository) FindDefault(ctx context.Context, userID uuid.UUID, kind enums.AddressKind) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND is_default = ?", userID, kind, true).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}
