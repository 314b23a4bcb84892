package inventory

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hngo-dev/meshmart-backend/internal/products"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	pkgerrors "github.com/hngo-dev/meshmart-backend/pkg/errors"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
	"github.com/hngo-dev/meshmart-backend/pkg/types"
)

// Direction selects whether an adjustment takes stock out or puts it back.
type Direction string

const (
	DirectionReserve Direction = "reserve"
	DirectionRestore Direction = "restore"
)

// Adjuster applies and reverses stock deltas on simple products and on
// variant stock counters, always inside the caller's transaction.
type Adjuster interface {
	Adjust(ctx context.Context, tx *gorm.DB, item models.OrderLineItem, direction Direction) error
}

type adjuster struct {
	repo products.Repository
	logg *logger.Logger
}

// NewAdjuster builds an inventory adjuster.
func NewAdjuster(repo products.Repository, logg *logger.Logger) (Adjuster, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &adjuster{repo: repo, logg: logg}, nil
}

// Adjust mutates the stock counter matching the line item. Reserving below
// zero fails with an out-of-stock error; the enclosing transaction must roll
// the whole order back.
func (a *adjuster) Adjust(ctx context.Context, tx *gorm.DB, item models.OrderLineItem, direction Direction) error {
	if tx == nil {
		return fmt.Errorf("transaction required")
	}
	if item.Qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := a.repo.WithTx(tx)
	product, err := repo.FindByID(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("loading product %s: %w", item.ProductID, err)
	}

	delta := item.Qty
	if direction == DirectionReserve {
		delta = -delta
	}

	if !product.HasVariants {
		next := product.StockQty + delta
		if next < 0 {
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
				WithDetails(map[string]any{
					"productId": product.ID.String(),
					"available": product.StockQty,
					"requested": item.Qty,
				})
		}
		return repo.UpdateStock(ctx, product.ID, next)
	}

	variant := matchVariant(product.Variants, item.Attributes)
	if variant == nil {
		// Cart and catalog disagree on the attribute set. The observed
		// behavior is a logged no-op rather than a failed order.
		logCtx := a.logg.WithFields(ctx, map[string]any{
			"product_id":   product.ID.String(),
			"line_item_id": item.ID.String(),
			"direction":    string(direction),
		})
		a.logg.Warn(logCtx, "no variant matches line item attributes, stock not adjusted")
		return nil
	}

	next := variant.StockQty + delta
	if next < 0 {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient variant stock").
			WithDetails(map[string]any{
				"productId": product.ID.String(),
				"variantId": variant.ID.String(),
				"available": variant.StockQty,
				"requested": item.Qty,
			})
	}
	return repo.UpdateVariantStock(ctx, variant.ID, next)
}

func matchVariant(variants []models.ProductVariant, attrs types.VariantAttributes) *models.ProductVariant {
	for i := range variants {
		if variants[i].Attributes.Matches(attrs) {
			return &variants[i]
		}
	}
	return nil
}
