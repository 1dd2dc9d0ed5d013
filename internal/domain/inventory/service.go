// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"github.com/your-org/fashion-store/internal/pkg/pagination"
	"gorm.io/gorm"
)

// Service owns every change to variant stock. Decrement and Restore run inside
// the caller's transaction; Adjust opens its own.
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// AdjustStockRequest represents a manual stock correction
type AdjustStockRequest struct {
	Delta int    `json:"delta" binding:"required"`
	Notes string `json:"notes" binding:"max=500"`
}

// MovementListResponse is one page of a variant's movement history
type MovementListResponse struct {
	Movements  []InventoryMovement   `json:"movements"`
	Pagination pagination.Pagination `json:"pagination"`
}

// Decrement removes qty from the variant's stock with a single conditional
// update. Concurrent decrements can never drive stock below zero: when the
// row no longer holds qty units nothing is updated and OutOfStock is returned.
func (s *Service) Decrement(tx *gorm.DB, variantID uint, qty int, ref Reference) (*InventoryMovement, error) {
	if qty <= 0 {
		return nil, apperror.Validation("quantity must be greater than zero")
	}

	result := tx.Model(&product.ProductVariant{}).
		Where("id = ? AND stock_quantity >= ?", variantID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if result.Error != nil {
		return nil, apperror.Persistence("decrement stock", result.Error)
	}

	if result.RowsAffected == 0 {
		available, err := currentStock(tx, variantID)
		if err != nil {
			return nil, err
		}
		return nil, OutOfStock(variantID, available)
	}

	return s.record(tx, variantID, MovementTypeSale, -qty, ref)
}

// Restore returns qty units to the variant's stock
func (s *Service) Restore(tx *gorm.DB, variantID uint, qty int, ref Reference) (*InventoryMovement, error) {
	if qty <= 0 {
		return nil, apperror.Validation("quantity must be greater than zero")
	}

	result := tx.Model(&product.ProductVariant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if result.Error != nil {
		return nil, apperror.Persistence("restore stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperror.NotFound("product variant")
	}

	return s.record(tx, variantID, MovementTypeCancellation, qty, ref)
}

// Adjust applies a signed manual correction. The result may not go negative.
func (s *Service) Adjust(ctx context.Context, actorID, variantID uint, req *AdjustStockRequest) (*InventoryMovement, error) {
	if req.Delta == 0 {
		return nil, apperror.Validation("delta must not be zero")
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, apperror.Persistence("begin transaction", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	query := tx.Model(&product.ProductVariant{}).Where("id = ?", variantID)
	if req.Delta < 0 {
		query = query.Where("stock_quantity >= ?", -req.Delta)
	}

	result := query.UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", req.Delta))
	if result.Error != nil {
		tx.Rollback()
		return nil, apperror.Persistence("adjust stock", result.Error)
	}

	if result.RowsAffected == 0 {
		available, err := currentStock(tx, variantID)
		tx.Rollback()
		if err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("insufficient_stock", "adjustment would make stock negative").
			WithDetail("available", available)
	}

	movement, err := s.record(tx, variantID, MovementTypeAdjustment, req.Delta, Reference{
		ActorID: &actorID,
		Notes:   req.Notes,
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperror.Persistence("commit stock adjustment", err)
	}

	s.logger.WithFields(logrus.Fields{
		"variant_id": variantID,
		"delta":      req.Delta,
		"new_stock":  movement.NewQuantity,
		"admin_id":   actorID,
	}).Info("Stock adjusted")

	return movement, nil
}

// Movements lists a variant's stock history, newest first
func (s *Service) Movements(ctx context.Context, variantID uint, params pagination.Params) (*MovementListResponse, error) {
	params.Normalize(s.config.Store.PageSize, s.config.Store.MaxPageSize)

	db := s.db.WithContext(ctx)
	if _, err := currentStock(db, variantID); err != nil {
		return nil, err
	}

	query := db.Model(&InventoryMovement{}).Where("variant_id = ?", variantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Persistence("count movements", err)
	}

	var movements []InventoryMovement
	if err := query.Order("created_at DESC, id DESC").Offset(params.Offset()).Limit(params.Limit).Find(&movements).Error; err != nil {
		return nil, apperror.Persistence("list movements", err)
	}

	return &MovementListResponse{
		Movements:  movements,
		Pagination: pagination.New(params, total),
	}, nil
}

// LowStock lists variants at or below threshold units, lowest first
func (s *Service) LowStock(ctx context.Context, threshold int) ([]product.ProductVariant, error) {
	var variants []product.ProductVariant
	err := s.db.WithContext(ctx).
		Preload("Product").
		Preload("Color").
		Preload("Size").
		Where("stock_quantity <= ?", threshold).
		Order("stock_quantity ASC, id ASC").
		Find(&variants).Error
	if err != nil {
		return nil, apperror.Persistence("list low stock variants", err)
	}
	return variants, nil
}

// record writes the movement row after the stock column has changed
func (s *Service) record(tx *gorm.DB, variantID uint, movementType MovementType, delta int, ref Reference) (*InventoryMovement, error) {
	newQuantity, err := currentStock(tx, variantID)
	if err != nil {
		return nil, err
	}

	movement := &InventoryMovement{
		VariantID:        variantID,
		MovementType:     movementType,
		Quantity:         delta,
		PreviousQuantity: newQuantity - delta,
		NewQuantity:      newQuantity,
		ReferenceType:    ref.Type,
		ReferenceID:      ref.ID,
		Notes:            ref.Notes,
		CreatedBy:        ref.ActorID,
	}

	if err := tx.Create(movement).Error; err != nil {
		return nil, apperror.Persistence("record stock movement", err)
	}

	return movement, nil
}

func currentStock(db *gorm.DB, variantID uint) (int, error) {
	var variant product.ProductVariant
	err := db.Select("id", "stock_quantity").First(&variant, variantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperror.NotFound("product variant")
		}
		return 0, apperror.Persistence("load stock", err)
	}
	return variant.StockQuantity, nil
}
