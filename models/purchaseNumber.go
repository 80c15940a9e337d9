package models

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelierfoods/supply_backend/utils"
)

const (
	purchaseNumberPrefix      = "PC"
	purchaseNumberMaxAttempts = 10
)

// purchaseMonthPrefix builds "PC-YYYYMM-" for the purchase creation time.
func purchaseMonthPrefix(t time.Time) string {
	return purchaseNumberPrefix + "-" + utils.MonthKey(t) + "-"
}

// parsePurchaseCounter extracts the trailing counter of an identifier under
// monthPrefix. Malformed identifiers report ok=false; they must never crash
// numbering.
func parsePurchaseCounter(number string, monthPrefix string) (int, bool) {
	if !strings.HasPrefix(number, monthPrefix) {
		return 0, false
	}
	suffix := strings.TrimPrefix(number, monthPrefix)
	counter, err := strconv.Atoi(suffix)
	if err != nil || counter < 0 {
		return 0, false
	}
	return counter, true
}

// timeDerivedCounter is the recovery starting point when the stored maximum
// cannot be parsed.
func timeDerivedCounter(t time.Time) int {
	return int(t.UnixNano()/int64(time.Millisecond)) % 10000
}

// startingCounter picks where probing begins: the parsed maximum for the
// month, or a time-derived value when the maximum is absent or malformed.
func startingCounter(maxNumber string, monthPrefix string, now time.Time) int {
	if maxNumber == "" {
		return 0
	}
	counter, ok := parsePurchaseCounter(maxNumber, monthPrefix)
	if !ok {
		return timeDerivedCounter(now)
	}
	return counter
}

// fallbackPurchaseNumber is the guaranteed-unique last resort after all
// probe attempts collided: a high-resolution timestamp plus a random
// fragment under the same month prefix.
func fallbackPurchaseNumber(monthPrefix string, now time.Time) string {
	return fmt.Sprintf("%s%d-%s", monthPrefix, now.UnixNano(), uuid.NewString()[:8])
}

// nextPurchaseNumber reserves a month-scoped identifier of the form
// PC-YYYYMM-NNNN inside the caller's transaction. Probe-then-insert is racy
// on its own, so callers hold the per-tenant purchase lock while the unique
// index on (business_id, purchase_number) backstops correctness: a
// duplicate-key at commit surfaces as a retryable conflict.
func nextPurchaseNumber(ctx context.Context, tx *gorm.DB, businessId string, t time.Time) (string, error) {

	monthPrefix := purchaseMonthPrefix(t)

	var maxNumber *string
	if err := tx.WithContext(ctx).Model(&Purchase{}).
		Where("business_id = ? AND purchase_number LIKE ?", businessId, monthPrefix+"%").
		Select("MAX(purchase_number)").
		Scan(&maxNumber).Error; err != nil {
		return "", utils.NewStorageError(err)
	}

	now := time.Now().UTC()
	counter := startingCounter(utils.DereferencePtr(maxNumber), monthPrefix, now)

	for attempt := 0; attempt < purchaseNumberMaxAttempts; attempt++ {
		counter++
		candidate := fmt.Sprintf("%s%04d", monthPrefix, counter)

		var count int64
		if err := tx.WithContext(ctx).Model(&Purchase{}).
			Where("business_id = ? AND purchase_number = ?", businessId, candidate).
			Count(&count).Error; err != nil {
			return "", utils.NewStorageError(err)
		}
		if count == 0 {
			return candidate, nil
		}
	}

	return fallbackPurchaseNumber(monthPrefix, now), nil
}
