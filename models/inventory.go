package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atelierfoods/supply_backend/utils"
)

// The three inventory classes live in their own tables but share the stock
// and cost-basis columns, so purchase handling funnels through one
// InventoryLine shape with a kind tag.

type RawMaterial struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id" binding:"required"`
	Name         string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Unit         string          `gorm:"size:20" json:"unit"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_stock"`
	CostPerUnit  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_per_unit"`
	MinimumStock decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"minimum_stock"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m RawMaterial) GetBusinessId() string { return m.BusinessId }

type Supply struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id" binding:"required"`
	Name         string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Unit         string          `gorm:"size:20" json:"unit"`
	CategoryId   int             `gorm:"index" json:"category_id"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_stock"`
	CostPerUnit  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_per_unit"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s Supply) GetBusinessId() string { return s.BusinessId }

type FinishedGood struct {
	ID           int             `gorm:"primary_key" json:"id"`
	BusinessId   string          `gorm:"index;not null" json:"business_id" binding:"required"`
	Name         string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Unit         string          `gorm:"size:20" json:"unit"`
	CurrentStock decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_stock"`
	CostPerUnit  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_per_unit"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g FinishedGood) GetBusinessId() string { return g.BusinessId }

// Recipe composes raw materials into a producible good. Its derived cost is
// NOT recomputed when an ingredient's cost basis changes; only
// LastCostUpdatedAt is touched (by the outbox worker) so reporting knows the
// cached cost is stale.
type Recipe struct {
	ID                int             `gorm:"primary_key" json:"id"`
	BusinessId        string          `gorm:"index;not null" json:"business_id" binding:"required"`
	Name              string          `gorm:"size:100;not null" json:"name" binding:"required"`
	YieldQty          decimal.Decimal `gorm:"type:decimal(20,4);default:1" json:"yield_qty"`
	CachedCost        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cached_cost"`
	LastCostUpdatedAt *time.Time      `json:"last_cost_updated_at"`
	Details           []RecipeDetail  `json:"details"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r Recipe) GetBusinessId() string { return r.BusinessId }

type RecipeDetail struct {
	ID            int             `gorm:"primary_key" json:"id"`
	RecipeId      int             `gorm:"index;not null" json:"recipe_id"`
	RawMaterialId int             `gorm:"index;not null" json:"raw_material_id"`
	Qty           decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
}

// InventoryLine is the unified purchase line shape across the three classes.
type InventoryLine struct {
	Kind      ItemKind        `json:"kind"`
	ItemId    int             `json:"item_id" binding:"required"`
	Qty       decimal.Decimal `json:"qty" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

func (l InventoryLine) Amount() decimal.Decimal {
	return l.Qty.Mul(l.UnitPrice)
}

// inventoryItemView is the scan target for the locked read of any class.
type inventoryItemView struct {
	ID           int
	CurrentStock decimal.Decimal
	CostPerUnit  decimal.Decimal
}

func modelForKind(kind ItemKind) (interface{}, string) {
	switch kind {
	case ItemKindRawMaterial:
		return &RawMaterial{}, "raw material"
	case ItemKindSupply:
		return &Supply{}, "supply"
	case ItemKindFinishedGood:
		return &FinishedGood{}, "finished good"
	}
	return nil, ""
}

// applyInventoryLine mutates one item inside the purchase transaction:
// stock always increments by the purchased qty; the cost basis only moves
// when the new unit price is strictly greater (cost ratchet). A ratchet hit
// writes a cost history row and, for raw materials, a cost-basis-changed
// outbox event so dependent recipes get touched after commit. Supplies and
// finished goods additionally get an IN stock-movement audit row.
func applyInventoryLine(ctx context.Context, tx *gorm.DB, businessId string, purchase *Purchase, line InventoryLine) error {

	model, kindName := modelForKind(line.Kind)
	if model == nil {
		return utils.NewValidationError("invalid inventory line kind")
	}

	var item inventoryItemView
	err := tx.WithContext(ctx).Model(model).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ? AND id = ?", businessId, line.ItemId).
		Take(&item).Error
	if err == gorm.ErrRecordNotFound {
		return utils.NewNotFoundError(kindName + " not found")
	}
	if err != nil {
		return utils.NewStorageError(err)
	}

	// stock moves regardless of the ratchet outcome
	if err := tx.WithContext(ctx).Model(model).
		Where("business_id = ? AND id = ?", businessId, line.ItemId).
		UpdateColumn("current_stock", gorm.Expr("current_stock + ?", line.Qty)).Error; err != nil {
		return utils.NewStorageError(err)
	}

	if line.UnitPrice.GreaterThan(item.CostPerUnit) {
		if err := tx.WithContext(ctx).Model(model).
			Where("business_id = ? AND id = ?", businessId, line.ItemId).
			UpdateColumn("cost_per_unit", line.UnitPrice).Error; err != nil {
			return utils.NewStorageError(err)
		}
		if err := createCostHistory(ctx, tx, businessId, line.Kind, line.ItemId, item.CostPerUnit, line.UnitPrice, purchase.PurchaseNumber); err != nil {
			return err
		}
		if line.Kind == ItemKindRawMaterial {
			if err := publishCostBasisChanged(ctx, tx, businessId, line.ItemId, item.CostPerUnit, line.UnitPrice, purchase.PurchaseNumber); err != nil {
				return err
			}
		}
	}

	if line.Kind == ItemKindSupply || line.Kind == ItemKindFinishedGood {
		if err := createStockMovement(ctx, tx, businessId, line, purchase.PurchaseNumber); err != nil {
			return err
		}
	}

	return nil
}

// applyInventoryLines runs the mutator over every line of the purchase.
// Any single failure aborts the whole transaction upstream.
func applyInventoryLines(ctx context.Context, tx *gorm.DB, businessId string, purchase *Purchase, lines []InventoryLine) error {
	for _, line := range lines {
		if err := applyInventoryLine(ctx, tx, businessId, purchase, line); err != nil {
			return err
		}
	}
	return nil
}

func GetRawMaterial(ctx context.Context, id int) (*RawMaterial, error) {
	return GetResource[RawMaterial](ctx, id)
}

func GetSupply(ctx context.Context, id int) (*Supply, error) {
	return GetResource[Supply](ctx, id)
}

func GetFinishedGood(ctx context.Context, id int) (*FinishedGood, error) {
	return GetResource[FinishedGood](ctx, id)
}
