package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luxeleather/storefront-backend/pkg/db"
	"github.com/luxeleather/storefront-backend/pkg/db/models"
)

func setupWishlistDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		category_id TEXT,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		sku TEXT NOT NULL UNIQUE,
		description TEXT,
		material TEXT,
		care_instructions TEXT,
		price TEXT NOT NULL,
		compare_price TEXT,
		features TEXT,
		tags TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		is_featured INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, conn.Exec(`CREATE TABLE product_images (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		url TEXT NOT NULL,
		alt TEXT,
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_primary INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	)`).Error)
	require.NoError(t, conn.Exec(`CREATE TABLE wishlist_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		created_at DATETIME,
		UNIQUE (user_id, product_id)
	)`).Error)
	return conn
}

func insertWishProduct(t *testing.T, conn *gorm.DB, active bool) uuid.UUID {
	t.Helper()
	productID := uuid.New()
	require.NoError(t, conn.Exec(
		`INSERT INTO products (id, name, slug, sku, price, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		productID.String(), "Heritage Tote", "heritage-tote-"+productID.String()[:8],
		"SKU-"+productID.String()[:8], "349.00", active,
	).Error)
	return productID
}

func TestRepositoryUserProductIsUnique(t *testing.T) {
	conn := setupWishlistDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()
	productID := insertWishProduct(t, conn, true)

	_, err := repo.Create(ctx, &models.WishlistItem{ID: uuid.New(), UserID: userID, ProductID: productID})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.WishlistItem{ID: uuid.New(), UserID: userID, ProductID: productID})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "idx_wishlist_items_user_product"))
}

func TestRepositoryListPreloadsProduct(t *testing.T) {
	conn := setupWishlistDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()
	productID := insertWishProduct(t, conn, true)

	require.NoError(t, conn.Exec(
		`INSERT INTO product_images (id, product_id, url, sort_order, is_primary) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), productID.String(), "https://cdn.example.com/tote.jpg", 0, true,
	).Error)

	_, err := repo.Create(ctx, &models.WishlistItem{ID: uuid.New(), UserID: userID, ProductID: productID})
	require.NoError(t, err)

	items, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Heritage Tote", items[0].Product.Name)
	require.Len(t, items[0].Product.Images, 1)
}

func TestRepositoryFindActiveProductHidesInactive(t *testing.T) {
	conn := setupWishlistDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	inactive := insertWishProduct(t, conn, false)
	_, err := repo.FindActiveProduct(ctx, inactive)
	assert.Equal(t, gorm.ErrRecordNotFound, err)

	active := insertWishProduct(t, conn, true)
	product, err := repo.FindActiveProduct(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, active, product.ID)
}

func TestRepositoryDeleteReportsAffected(t *testing.T) {
	conn := setupWishlistDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	userID := uuid.New()
	productID := insertWishProduct(t, conn, true)

	affected, err := repo.Delete(ctx, userID, productID)
	require.NoError(t, err)
	assert.Zero(t, affected)

	_, err = repo.Create(ctx, &models.WishlistItem{ID: uuid.New(), UserID: userID, ProductID: productID})
	require.NoError(t, err)

	affected, err = repo.Delete(ctx, userID, productID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)
}
