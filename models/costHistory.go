package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierfoods/supply_backend/utils"
)

// CostHistory is written only when the cost ratchet actually raises an
// item's cost basis. Rows are immutable.
type CostHistory struct {
	ID             int              `gorm:"primary_key" json:"id"`
	BusinessId     string           `gorm:"index;not null" json:"business_id"`
	ItemKind       ItemKind         `gorm:"size:1;not null" json:"item_kind"`
	ItemId         int              `gorm:"index;not null" json:"item_id"`
	OldCost        decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"old_cost"`
	NewCost        decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"new_cost"`
	Reason         CostChangeReason `gorm:"size:20;not null" json:"reason"`
	PurchaseNumber string           `gorm:"size:50;index" json:"purchase_number"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

func createCostHistory(ctx context.Context, tx *gorm.DB, businessId string, kind ItemKind, itemId int, oldCost decimal.Decimal, newCost decimal.Decimal, purchaseNumber string) error {
	record := CostHistory{
		BusinessId:     businessId,
		ItemKind:       kind,
		ItemId:         itemId,
		OldCost:        oldCost,
		NewCost:        newCost,
		Reason:         CostChangeReasonPurchase,
		PurchaseNumber: purchaseNumber,
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		return utils.NewStorageError(err)
	}
	return nil
}

// TouchRecipesForRawMaterial stamps LastCostUpdatedAt on every recipe that
// references the raw material. Derived recipe cost is left alone; the stamp
// only flags staleness. Called by the outbox worker, not inside the
// purchase transaction.
func TouchRecipesForRawMaterial(ctx context.Context, db *gorm.DB, businessId string, rawMaterialId int, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Model(&Recipe{}).
		Where("business_id = ? AND id IN (?)", businessId,
			db.Model(&RecipeDetail{}).Select("recipe_id").Where("raw_material_id = ?", rawMaterialId)).
		UpdateColumn("last_cost_updated_at", at)
	if result.Error != nil {
		return 0, utils.NewStorageError(result.Error)
	}
	return result.RowsAffected, nil
}
