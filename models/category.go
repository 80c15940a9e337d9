package models

import (
	"context"

	"gorm.io/gorm"

	"github.com/atelierfoods/supply_backend/utils"
)

// ExpenseCategory labels financial lines (ledger expenses and card expense
// lines). Fixed labels for raw-material / resale / mixed purchases are
// created lazily on first use; supply purchases use the caller-selected one.
type ExpenseCategory struct {
	ID         int    `gorm:"primary_key" json:"id"`
	BusinessId string `gorm:"index:uniq_category,unique;not null" json:"business_id"`
	Name       string `gorm:"size:100;index:uniq_category,unique;not null" json:"name" binding:"required"`
	IsDefault  *bool  `gorm:"not null;default:false" json:"is_default"`
}

func (c ExpenseCategory) GetBusinessId() string {
	return c.BusinessId
}

// resolveCategoryLabel picks the label for a purchase's financial lines
// based on which inventory classes appear in it.
func resolveCategoryLabel(hasRawMaterials, hasSupplies, hasFinishedGoods bool) string {
	kinds := 0
	if hasRawMaterials {
		kinds++
	}
	if hasSupplies {
		kinds++
	}
	if hasFinishedGoods {
		kinds++
	}
	switch {
	case kinds > 1:
		return CategoryLabelMixed
	case hasRawMaterials:
		return CategoryLabelRawMaterials
	case hasFinishedGoods:
		return CategoryLabelResaleGoods
	case hasSupplies:
		// caller-selected category wins for pure supply purchases;
		// the label is only a fallback when none was given
		return CategoryLabelGeneral
	default:
		return CategoryLabelGeneral
	}
}

// getOrCreateCategory finds a category by name inside tx, creating it when
// absent. The unique index on (business_id, name) keeps concurrent creators
// from duplicating it.
func getOrCreateCategory(ctx context.Context, tx *gorm.DB, businessId string, name string, isDefault bool) (*ExpenseCategory, error) {
	var category ExpenseCategory
	err := tx.WithContext(ctx).
		Where("business_id = ? AND name = ?", businessId, name).
		First(&category).Error
	if err == nil {
		return &category, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, utils.NewStorageError(err)
	}

	category = ExpenseCategory{
		BusinessId: businessId,
		Name:       name,
	}
	if isDefault {
		category.IsDefault = utils.NewTrue()
	} else {
		category.IsDefault = utils.NewFalse()
	}
	if err := tx.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	return &category, nil
}

// resolvePurchaseCategory returns the category id to stamp on the
// purchase's financial lines. supplyCategoryId is honored only for
// supply-only purchases.
func resolvePurchaseCategory(ctx context.Context, tx *gorm.DB, businessId string, input *NewPurchase) (int, error) {
	hasRaw := len(input.RawMaterialLines) > 0
	hasSupply := len(input.SupplyLines) > 0
	hasFinished := len(input.FinishedGoodLines) > 0

	if hasSupply && !hasRaw && !hasFinished && input.SupplyCategoryId != nil && *input.SupplyCategoryId > 0 {
		if err := utils.ValidateResourceId[ExpenseCategory](ctx, businessId, *input.SupplyCategoryId); err != nil {
			return 0, utils.NewNotFoundError("supply category not found")
		}
		return *input.SupplyCategoryId, nil
	}

	label := resolveCategoryLabel(hasRaw, hasSupply, hasFinished)
	category, err := getOrCreateCategory(ctx, tx, businessId, label, label == CategoryLabelGeneral)
	if err != nil {
		return 0, err
	}
	return category.ID, nil
}
