package inventory

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/internal/products"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.ProductVariant{}))
	return db
}

func newTestAdjuster(t *testing.T, db *gorm.DB) Adjuster {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "inventory-test", Output: io.Discard})
	adjuster, err := NewAdjuster(products.NewRepository(db), logg)
	require.NoError(t, err)
	return adjuster
}

func adjustInTx(t *testing.T, db *gorm.DB, adjuster Adjuster, item models.OrderLineItem, direction Direction) error {
	t.Helper()

	return db.Transaction(func(tx *gorm.DB) error {
		return adjuster.Adjust(context.Background(), tx, item, direction)
	})
}

func TestAdjustReserveAndRestoreSimpleProduct(t *testing.T) {
	db := setupInventoryTestDB(t)
	adjuster := newTestAdjuster(t, db)

	product := &models.Product{SellerID: uuid.New(), Name: "Plain Mug", PriceCents: 900, StockQty: 10}
	require.NoError(t, db.Create(product).Error)

	item := models.OrderLineItem{ID: uuid.New(), ProductID: product.ID, Qty: 3}

	require.NoError(t, adjustInTx(t, db, adjuster, item, DirectionReserve))

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 7, reloaded.StockQty)

	require.NoError(t, adjustInTx(t, db, adjuster, item, DirectionRestore))
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 10, reloaded.StockQty)
}

func TestAdjustReserveBeyondStockFails(t *testing.T) {
	db := setupInventoryTestDB(t)
	adjuster := newTestAdjuster(t, db)

	product := &models.Product{SellerID: uuid.New(), Name: "Scarce Mug", PriceCents: 900, StockQty: 2}
	require.NoError(t, db.Create(product).Error)

	item := models.OrderLineItem{ID: uuid.New(), ProductID: product.ID, Qty: 3}
	err := adjustInTx(t, db, adjuster, item, DirectionReserve)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeOutOfStock, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, product.ID.String(), details["productId"])
	assert.Equal(t, 2, details["available"])
	assert.Equal(t, 3, details["requested"])

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, 2, reloaded.StockQty)
}

func TestAdjustMatchesVariantIgnoringOrderAndCase(t *testing.T) {
	db := setupInventoryTestDB(t)
	adjuster := newTestAdjuster(t, db)

	product := &models.Product{
		SellerID:    uuid.New(),
		Name:        "Varsity Jacket",
		PriceCents:  12000,
		HasVariants: true,
		Variants: []models.ProductVariant{
			{
				Attributes: types.VariantAttributes{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "M"}},
				PriceCents: 12000,
				StockQty:   5,
			},
			{
				Attributes: types.VariantAttributes{{Name: "Color", Value: "Blue"}, {Name: "Size", Value: "M"}},
				PriceCents: 12000,
				StockQty:   5,
			},
		},
	}
	require.NoError(t, db.Create(product).Error)

	item := models.OrderLineItem{
		ID:        uuid.New(),
		ProductID: product.ID,
		Qty:       2,
		// Reversed order and different name casing must still match.
		Attributes: types.VariantAttributes{{Name: "size", Value: "M"}, {Name: "COLOR", Value: "Red"}},
	}
	require.NoError(t, adjustInTx(t, db, adjuster, item, DirectionReserve))

	var variants []models.ProductVariant
	require.NoError(t, db.Where("product_id = ?", product.ID).Find(&variants).Error)
	stocks := map[string]int{}
	for _, variant := range variants {
		stocks[variant.Attributes[0].Value] = variant.StockQty
	}
	assert.Equal(t, 3, stocks["Red"])
	assert.Equal(t, 5, stocks["Blue"])
}

func TestAdjustVariantOutOfStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	adjuster := newTestAdjuster(t, db)

	product := &models.Product{
		SellerID:    uuid.New(),
		Name:        "Limited Print",
		PriceCents:  5000,
		HasVariants: true,
		Variants: []models.ProductVariant{
			{
				Attributes: types.VariantAttributes{{Name: "Edition", Value: "First"}},
				PriceCents: 5000,
				StockQty:   1,
			},
		},
	}
	require.NoError(t, db.Create(product).Error)

	item := models.OrderLineItem{
		ID:         uuid.New(),
		ProductID:  product.ID,
		Qty:        2,
		Attributes: types.VariantAttributes{{Name: "Edition", Value: "First"}},
	}
	err := adjustInTx(t, db, adjuster, item, DirectionReserve)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeOutOfStock, typed.Code())
}

func TestAdjustUnmatchedVariantIsNoOp(t *testing.T) {
	db := setupInventoryTestDB(t)
	adjuster := newTestAdjuster(t, db)

	product := &models.Product{
		SellerID:    uuid.New(),
		Name:        "Mismatch Tee",
		PriceCents:  2000,
		HasVariants: true,
		Variants: []models.ProductVariant{
			{
				Attributes: types.VariantAttributes{{Name: "Size", Value: "L"}},
				PriceCents: 2000,
				StockQty:   4,
			},
		},
	}
	require.NoError(t, db.Create(product).Error)

	item := models.OrderLineItem{
		ID:         uuid.New(),
		ProductID:  product.ID,
		Qty:        1,
		Attributes: types.VariantAttributes{{Name: "Size", Value: "XXL"}},
	}
	require.NoError(t, adjustInTx(t, db, adjuster, item, DirectionReserve))

	var variant models.ProductVariant
	require.NoError(t, db.Where("product_id = ?", product.ID).First(&variant).Error)
	assert.Equal(t, 4, variant.StockQty)
}

func TestAdjustRejectsBadInput(t *testing.T) {
	db := setupInventoryTestDB(t)
	adjuster := newTestAdjuster(t, db)

	err := adjustInTx(t, db, adjuster, models.OrderLineItem{ID: uuid.New(), ProductID: uuid.New(), Qty: 0}, DirectionReserve)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	err = adjuster.Adjust(context.Background(), nil, models.OrderLineItem{Qty: 1}, DirectionReserve)
	require.Error(t, err)

	err = adjustInTx(t, db, adjuster, models.OrderLineItem{ID: uuid.New(), ProductID: uuid.New(), Qty: 1}, DirectionReserve)
	require.Error(t, err, "missing product must fail")
}
