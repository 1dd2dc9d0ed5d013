package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/logger"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"github.com/your-org/fashion-store/internal/pkg/testutil"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *gorm.DB, []product.ProductVariant) {
	t.Helper()

	db := testutil.NewDB(t,
		&product.Category{}, &product.Color{}, &product.Size{},
		&product.Product{}, &product.ProductVariant{},
		&InventoryMovement{},
	)

	category := product.Category{Name: "Tops"}
	require.NoError(t, db.Create(&category).Error)
	color := product.Color{Name: "Red", HexCode: "#FF0000"}
	require.NoError(t, db.Create(&color).Error)
	small := product.Size{Name: "S", SortOrder: 1}
	medium := product.Size{Name: "M", SortOrder: 2}
	require.NoError(t, db.Create(&small).Error)
	require.NoError(t, db.Create(&medium).Error)

	p := product.Product{Name: "Tee", BasePrice: decimal.NewFromInt(20), CategoryID: category.ID, IsActive: true}
	require.NoError(t, db.Create(&p).Error)

	variants := []product.ProductVariant{
		{ProductID: p.ID, ColorID: color.ID, SizeID: small.ID, Price: p.BasePrice, StockQuantity: 5, SKU: "TEE-RED-S"},
		{ProductID: p.ID, ColorID: color.ID, SizeID: medium.ID, Price: p.BasePrice, StockQuantity: 1, SKU: "TEE-RED-M"},
	}
	require.NoError(t, db.Create(&variants).Error)

	return NewService(db, testutil.Config(), logger.Discard()), db, variants
}

func stockOf(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var v product.ProductVariant
	require.NoError(t, db.First(&v, id).Error)
	return v.StockQuantity
}

func TestDecrementAndRestore(t *testing.T) {
	svc, db, variants := setup(t)
	small := variants[0]
	orderID := uint(42)

	movement, err := svc.Decrement(db, small.ID, 3, OrderReference(orderID, nil))
	require.NoError(t, err)
	assert.Equal(t, MovementTypeSale, movement.MovementType)
	assert.Equal(t, -3, movement.Quantity)
	assert.Equal(t, 5, movement.PreviousQuantity)
	assert.Equal(t, 2, movement.NewQuantity)
	assert.Equal(t, ReferenceOrder, movement.ReferenceType)
	require.NotNil(t, movement.ReferenceID)
	assert.Equal(t, orderID, *movement.ReferenceID)

	_, err = svc.Decrement(db, small.ID, 3, OrderReference(orderID, nil))
	require.Error(t, err)
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "out_of_stock", appErr.Code)
	assert.Equal(t, 2, appErr.Details["available"])
	assert.Equal(t, 2, stockOf(t, db, small.ID))

	movement, err = svc.Restore(db, small.ID, 3, OrderReference(orderID, nil))
	require.NoError(t, err)
	assert.Equal(t, MovementTypeCancellation, movement.MovementType)
	assert.Equal(t, 5, stockOf(t, db, small.ID))
}

func TestDecrementRejectsBadInput(t *testing.T) {
	svc, db, _ := setup(t)

	_, err := svc.Decrement(db, 1, 0, Reference{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Decrement(db, 999, 1, Reference{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Restore(db, 999, 1, Reference{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDecrementRollsBackWithCallerTransaction(t *testing.T) {
	svc, db, variants := setup(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.Decrement(tx, variants[0].ID, 2, Reference{}); err != nil {
			return err
		}
		_, err := svc.Decrement(tx, variants[1].ID, 2, Reference{})
		return err
	})
	require.Error(t, err)

	assert.Equal(t, 5, stockOf(t, db, variants[0].ID))
	assert.Equal(t, 1, stockOf(t, db, variants[1].ID))

	var count int64
	require.NoError(t, db.Model(&InventoryMovement{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdjust(t *testing.T) {
	svc, db, variants := setup(t)
	ctx := context.Background()
	adminID := uint(7)
	id := variants[1].ID

	_, err := svc.Adjust(ctx, adminID, id, &AdjustStockRequest{Delta: 0})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Adjust(ctx, adminID, id, &AdjustStockRequest{Delta: -2})
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindConflict, appErr.Kind)
	assert.Equal(t, 1, appErr.Details["available"])
	assert.Equal(t, 1, stockOf(t, db, id))

	_, err = svc.Adjust(ctx, adminID, 999, &AdjustStockRequest{Delta: 3})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	movement, err := svc.Adjust(ctx, adminID, id, &AdjustStockRequest{Delta: 9, Notes: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, MovementTypeAdjustment, movement.MovementType)
	assert.Equal(t, 1, movement.PreviousQuantity)
	assert.Equal(t, 10, movement.NewQuantity)
	require.NotNil(t, movement.CreatedBy)
	assert.Equal(t, adminID, *movement.CreatedBy)

	movement, err = svc.Adjust(ctx, adminID, id, &AdjustStockRequest{Delta: -10})
	require.NoError(t, err)
	assert.Equal(t, 0, movement.NewQuantity)
}

func TestMovementsNewestFirst(t *testing.T) {
	svc, db, variants := setup(t)
	ctx := context.Background()
	id := variants[0].ID

	_, err := svc.Decrement(db, id, 1, Reference{})
	require.NoError(t, err)
	_, err = svc.Adjust(ctx, 1, id, &AdjustStockRequest{Delta: 4})
	require.NoError(t, err)
	_, err = svc.Restore(db, id, 1, Reference{})
	require.NoError(t, err)

	page, err := svc.Movements(ctx, id, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Pagination.Total)
	require.Len(t, page.Movements, 2)
	assert.Equal(t, MovementTypeCancellation, page.Movements[0].MovementType)
	assert.Equal(t, MovementTypeAdjustment, page.Movements[1].MovementType)

	_, err = svc.Movements(ctx, 999, pagination.Params{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLowStock(t *testing.T) {
	svc, _, variants := setup(t)

	low, err := svc.LowStock(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, variants[1].ID, low[0].ID)
	require.NotNil(t, low[0].Product)
	assert.Equal(t, "Tee", low[0].Product.Name)
	assert.Equal(t, "M", low[0].Size.Name)

	all, err := svc.LowStock(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].StockQuantity)
}
