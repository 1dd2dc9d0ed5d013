// internal/domain/inventory/entity.go
package inventory

import (
	"fmt"
	"time"

	"github.com/your-org/fashion-store/internal/pkg/apperror"
)

// MovementType represents the type of inventory movement
type MovementType string

const (
	MovementTypeSale         MovementType = "sale"         // Checkout decrement
	MovementTypeCancellation MovementType = "cancellation" // Stock returned by a cancelled order
	MovementTypeAdjustment   MovementType = "adjustment"   // Manual correction by an admin
)

const ReferenceOrder = "order"

// InventoryMovement is the audit trail of every stock change of a variant
type InventoryMovement struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	VariantID        uint         `gorm:"not null;index" json:"variant_id"`
	MovementType     MovementType `gorm:"not null;size:20;index" json:"movement_type"`
	Quantity         int          `gorm:"not null" json:"quantity"` // signed delta
	PreviousQuantity int          `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int          `gorm:"not null" json:"new_quantity"`
	ReferenceType    string       `gorm:"size:50" json:"reference_type,omitempty"`
	ReferenceID      *uint        `gorm:"index" json:"reference_id,omitempty"`
	Notes            string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy        *uint        `gorm:"index" json:"created_by,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (InventoryMovement) TableName() string { return "inventory_movements" }

// Reference ties a movement to whatever caused it
type Reference struct {
	Type    string
	ID      *uint
	ActorID *uint
	Notes   string
}

// OrderReference builds the reference recorded for checkout and cancellation
func OrderReference(orderID uint, actorID *uint) Reference {
	return Reference{Type: ReferenceOrder, ID: &orderID, ActorID: actorID}
}

// OutOfStock reports that a variant could not cover the requested quantity
func OutOfStock(variantID uint, available int) *apperror.Error {
	return apperror.Conflict("out_of_stock", fmt.Sprintf("variant %d is out of stock", variantID)).
		WithDetail("variant_id", variantID).
		WithDetail("available", available)
}
