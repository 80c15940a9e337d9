package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/atelierfoods/supply_backend/models"
	"github.com/atelierfoods/supply_backend/utils"
)

// OutboxCostProcessor drains cost-basis-changed events written inside
// purchase transactions and touches the recipes that reference the changed
// raw material. Running it out-of-band keeps the purchase transaction
// narrowly scoped; processing is idempotent (re-touching a recipe is
// harmless), so at-least-once delivery is safe.
type OutboxCostProcessor struct {
	DB        *gorm.DB
	Logger    *logrus.Logger
	WorkerID  string
	BatchSize int
	Interval  time.Duration
	LockTTL   time.Duration
}

func NewOutboxCostProcessor(db *gorm.DB, logger *logrus.Logger) *OutboxCostProcessor {
	return &OutboxCostProcessor{
		DB:        db,
		Logger:    logger,
		WorkerID:  "cost-" + time.Now().Format("20060102-150405.000"),
		BatchSize: 50,
		Interval:  2 * time.Second,
		LockTTL:   30 * time.Second,
	}
}

func shouldRunOutboxCostProcessor() bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv("OUTBOX_COST_PROCESSING")))
	if val == "false" {
		return false
	}
	return true
}

func (p *OutboxCostProcessor) Run(ctx context.Context) {
	if p == nil || p.DB == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.processOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.Interval):
		}
	}
}

func (p *OutboxCostProcessor) processOnce(ctx context.Context) {
	now := time.Now().UTC()
	staleBefore := now.Add(-p.LockTTL)

	var claimed []models.OutboxEventRecord
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("event_type = ?", models.OutboxEventTypeCostBasisChanged).
			Where("is_processed = 0").
			Where("(locked_at IS NULL OR locked_at <= ?)", staleBefore).
			Order("id ASC").
			Limit(p.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		ids := make([]int, 0, len(claimed))
		for i := range claimed {
			claimed[i].LockedAt = &now
			ids = append(ids, claimed[i].ID)
		}
		return tx.Model(&models.OutboxEventRecord{}).
			Where("id IN ?", ids).
			UpdateColumn("locked_at", now).Error
	})
	if err != nil {
		p.Logger.WithFields(logrus.Fields{
			"module": "outbox", "worker": p.WorkerID,
		}).Error("claiming cost events failed: " + err.Error())
		return
	}

	for i := range claimed {
		p.handleEvent(ctx, &claimed[i])
	}
}

func (p *OutboxCostProcessor) handleEvent(ctx context.Context, event *models.OutboxEventRecord) {
	var payload models.CostBasisChangedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		p.markFailed(ctx, event, err)
		return
	}

	touched, err := models.TouchRecipesForRawMaterial(ctx, p.DB, event.BusinessId, payload.RawMaterialId, payload.ChangedAt)
	if err != nil {
		p.markFailed(ctx, event, err)
		return
	}

	now := time.Now().UTC()
	if err := p.DB.WithContext(ctx).Model(&models.OutboxEventRecord{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"is_processed": true,
			"processed_at": now,
			"locked_at":    nil,
		}).Error; err != nil {
		p.Logger.WithFields(logrus.Fields{
			"module": "outbox", "worker": p.WorkerID, "event_id": event.ID,
		}).Error("marking cost event processed failed: " + err.Error())
		return
	}

	p.Logger.WithFields(logrus.Fields{
		"module":          "outbox",
		"worker":          p.WorkerID,
		"event_id":        event.ID,
		"raw_material_id": payload.RawMaterialId,
		"recipes_touched": touched,
	}).Info("cost basis change propagated")
}

func (p *OutboxCostProcessor) markFailed(ctx context.Context, event *models.OutboxEventRecord, cause error) {
	if err := p.DB.WithContext(ctx).Model(&models.OutboxEventRecord{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"failure_count": gorm.Expr("failure_count + 1"),
			"last_error":    utils.NilIfEmpty(cause.Error()),
			"locked_at":     nil,
		}).Error; err != nil {
		p.Logger.WithFields(logrus.Fields{
			"module": "outbox", "worker": p.WorkerID, "event_id": event.ID,
		}).Error("recording cost event failure failed: " + err.Error())
	}
}
