package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierfoods/supply_backend/utils"
)

// StockMovement is the audit trail for supply and finished-good stock.
// Raw materials are tracked through cost history instead.
type StockMovement struct {
	ID             int                 `gorm:"primary_key" json:"id"`
	BusinessId     string              `gorm:"index;not null" json:"business_id"`
	ItemKind       ItemKind            `gorm:"size:1;not null" json:"item_kind"`
	ItemId         int                 `gorm:"index;not null" json:"item_id"`
	MovementType   StockMovementType   `gorm:"size:5;not null" json:"movement_type"`
	Reason         StockMovementReason `gorm:"size:20;not null" json:"reason"`
	Qty            decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"qty"`
	PurchaseNumber string              `gorm:"size:50;index" json:"purchase_number"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func createStockMovement(ctx context.Context, tx *gorm.DB, businessId string, line InventoryLine, purchaseNumber string) error {
	movement := StockMovement{
		BusinessId:     businessId,
		ItemKind:       line.Kind,
		ItemId:         line.ItemId,
		MovementType:   StockMovementTypeIn,
		Reason:         StockMovementReasonPurchase,
		Qty:            line.Qty,
		PurchaseNumber: purchaseNumber,
	}
	if err := tx.WithContext(ctx).Create(&movement).Error; err != nil {
		return utils.NewStorageError(err)
	}
	return nil
}
