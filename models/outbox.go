package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierfoods/supply_backend/utils"
)

// OutboxEventRecord implements a transactional outbox: the event row is
// written inside the caller's DB transaction and handled asynchronously by
// the dispatcher after commit. This keeps the purchase transaction narrowly
// scoped while still guaranteeing the cascade happens at least once.
type OutboxEventRecord struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id"`
	EventType     OutboxEventType `gorm:"size:40;not null;index" json:"event_type"`
	Payload       []byte          `gorm:"type:text" json:"payload"`
	IsProcessed   bool            `gorm:"not null;default:false;index" json:"is_processed"`
	LockedAt      *time.Time      `json:"locked_at"`
	ProcessedAt   *time.Time      `json:"processed_at"`
	FailureCount  int             `gorm:"not null;default:0" json:"failure_count"`
	LastError     *string         `gorm:"type:text" json:"last_error"`
	CorrelationId string          `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// CostBasisChangedPayload is the outbox payload for raw-material cost
// ratchet events.
type CostBasisChangedPayload struct {
	RawMaterialId  int             `json:"raw_material_id"`
	OldCost        decimal.Decimal `json:"old_cost"`
	NewCost        decimal.Decimal `json:"new_cost"`
	PurchaseNumber string          `json:"purchase_number"`
	ChangedAt      time.Time       `json:"changed_at"`
}

func publishCostBasisChanged(ctx context.Context, tx *gorm.DB, businessId string, rawMaterialId int, oldCost decimal.Decimal, newCost decimal.Decimal, purchaseNumber string) error {

	payload, err := json.Marshal(&CostBasisChangedPayload{
		RawMaterialId:  rawMaterialId,
		OldCost:        oldCost,
		NewCost:        newCost,
		PurchaseNumber: purchaseNumber,
		ChangedAt:      time.Now().UTC(),
	})
	if err != nil {
		return utils.NewStorageError(err)
	}

	record := OutboxEventRecord{
		BusinessId:    businessId,
		EventType:     OutboxEventTypeCostBasisChanged,
		Payload:       payload,
		IsProcessed:   false,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		return utils.NewStorageError(err)
	}
	return nil
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
