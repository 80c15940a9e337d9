package models

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierfoods/supply_backend/utils"
)

// LedgerExpense is a scheduled payable. A non-card purchase with N
// installments produces exactly N rows sharing one competence date.
type LedgerExpense struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	CategoryId     int             `gorm:"index;not null" json:"category_id"`
	Description    string          `gorm:"size:255;not null" json:"description"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	DueDate        time.Time       `gorm:"not null" json:"due_date"`
	CompetenceDate time.Time       `gorm:"not null" json:"competence_date"`
	CurrentStatus  ExpenseStatus   `gorm:"size:10;not null;default:'PENDING'" json:"current_status"`
	PurchaseNumber string          `gorm:"size:50;index" json:"purchase_number"`
	InstallmentNo  int             `gorm:"not null;default:1" json:"installment_no"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type installmentAmount struct {
	Amount decimal.Decimal
}

// splitInstallments divides total across n portions at 2 decimal places.
// Rounding rule: portions 1..n-1 are round(total/n, 2); the last portion
// absorbs the remainder so the portions always sum exactly to total.
func splitInstallments(total decimal.Decimal, n int) []installmentAmount {
	if n <= 1 {
		return []installmentAmount{{Amount: total}}
	}
	base := total.Div(decimal.NewFromInt(int64(n))).Round(2)
	installments := make([]installmentAmount, n)
	accumulated := decimal.Zero
	for i := 0; i < n-1; i++ {
		installments[i] = installmentAmount{Amount: base}
		accumulated = accumulated.Add(base)
	}
	installments[n-1] = installmentAmount{Amount: total.Sub(accumulated)}
	return installments
}

// installmentDueDate resolves the due date of installment ordinal (1-based).
// The explicit list is honored only when it covers every installment; a
// short list is ignored entirely so the schedule never mixes explicit and
// derived dates. Without a full list the base due date advances one month
// per ordinal.
func installmentDueDate(baseDueDate time.Time, explicit []time.Time, ordinal int, total int) time.Time {
	if len(explicit) >= total {
		return explicit[ordinal-1]
	}
	return baseDueDate.AddDate(0, ordinal-1, 0)
}

// purchaseLineDescription labels a financial line, suffixed with the
// installment ordinal when the purchase is split.
func purchaseLineDescription(purchase *Purchase, ordinal int, total int) string {
	description := "Purchase " + purchase.PurchaseNumber
	if purchase.SupplierName != "" {
		description = description + " - " + purchase.SupplierName
	}
	if total > 1 {
		description = fmt.Sprintf("%s (%d/%d)", description, ordinal, total)
	}
	return description
}

// routeDirectLedger creates the N scheduled expense rows for a non-card
// purchase inside the caller's transaction and returns the first row, which
// the purchase aggregate links to.
func routeDirectLedger(ctx context.Context, tx *gorm.DB, businessId string, purchase *Purchase, categoryId int, installments []installmentAmount, explicitDueDates []time.Time) (*LedgerExpense, error) {

	n := len(installments)
	status := ExpenseStatusPending
	if purchase.CurrentStatus == PurchaseStatusPaid {
		status = ExpenseStatusPaid
	}

	var first *LedgerExpense
	for i, inst := range installments {
		expense := LedgerExpense{
			BusinessId:     businessId,
			CategoryId:     categoryId,
			Description:    purchaseLineDescription(purchase, i+1, n),
			Amount:         inst.Amount,
			DueDate:        installmentDueDate(purchase.DueDate, explicitDueDates, i+1, n),
			CompetenceDate: purchase.PurchaseDate,
			CurrentStatus:  status,
			PurchaseNumber: purchase.PurchaseNumber,
			InstallmentNo:  i + 1,
		}
		if err := tx.WithContext(ctx).Create(&expense).Error; err != nil {
			return nil, utils.NewStorageError(err)
		}
		if first == nil {
			created := expense
			first = &created
		}
	}
	return first, nil
}
