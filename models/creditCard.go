package models

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierfoods/supply_backend/config"
	"github.com/atelierfoods/supply_backend/utils"
)

type CreditCard struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id" binding:"required"`
	CardName       string          `gorm:"size:100;not null" json:"card_name" binding:"required"`
	ClosingDay     int             `gorm:"not null" json:"closing_day" binding:"required"`
	DueDay         int             `gorm:"not null" json:"due_day" binding:"required"`
	CreditLimit    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_limit"`
	AvailableLimit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"available_limit"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c CreditCard) GetBusinessId() string {
	return c.BusinessId
}

// CardInvoice is the monthly billing bucket for a card. ReferenceMonth is
// "YYYY-MM"; one bucket per (card, month) enforced by the unique index.
type CardInvoice struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null;index:uniq_card_invoice,unique" json:"business_id"`
	CardId         int             `gorm:"not null;index:uniq_card_invoice,unique" json:"card_id"`
	ReferenceMonth string          `gorm:"size:7;not null;index:uniq_card_invoice,unique" json:"reference_month"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	ClosingDate    time.Time       `gorm:"not null" json:"closing_date"`
	DueDate        time.Time       `gorm:"not null" json:"due_date"`
	CurrentStatus  InvoiceStatus   `gorm:"size:10;not null;default:'OPEN'" json:"current_status"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type CardExpenseLine struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id"`
	InvoiceId      int             `gorm:"index;not null" json:"invoice_id"`
	CategoryId     int             `gorm:"index;not null" json:"category_id"`
	Description    string          `gorm:"size:255;not null" json:"description"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PurchaseNumber string          `gorm:"size:50;index;not null" json:"purchase_number"`
	InstallmentNo  int             `gorm:"not null;default:1" json:"installment_no"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// baseInvoiceMonth returns the first day (UTC) of the billing month a
// purchase falls into: the purchase month, rolled forward by one when the
// purchase day is past the card's closing day. Year wrap is handled by
// AddDate.
func baseInvoiceMonth(purchaseDate time.Time, closingDay int) time.Time {
	month := time.Date(purchaseDate.Year(), purchaseDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	if purchaseDate.Day() > closingDay {
		month = month.AddDate(0, 1, 0)
	}
	return month
}

// dayOfMonthClamped pins day into month, clamping to the month's last day
// (closing day 31 in February becomes the 28th/29th).
func dayOfMonthClamped(month time.Time, day int) time.Time {
	lastDay := month.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

// invoiceDates derives the closing and due dates of the bucket for refMonth.
// When the due day does not come after the closing day, payment falls in the
// following month.
func invoiceDates(refMonth time.Time, closingDay int, dueDay int) (time.Time, time.Time) {
	closing := dayOfMonthClamped(refMonth, closingDay)
	dueMonth := refMonth
	if dueDay <= closingDay {
		dueMonth = refMonth.AddDate(0, 1, 0)
	}
	due := dayOfMonthClamped(dueMonth, dueDay)
	return closing, due
}

func referenceMonthKey(month time.Time) string {
	return month.Format("2006-01")
}

// getOrCreateCardInvoice finds the month's bucket, creating it OPEN if
// absent. The unique index keeps one bucket per (card, month) regardless of
// status, so a closed bucket is still the target for late-arriving lines.
// Runs inside the purchase transaction.
func getOrCreateCardInvoice(ctx context.Context, tx *gorm.DB, card *CreditCard, month time.Time) (*CardInvoice, error) {
	refMonth := referenceMonthKey(month)

	var invoice CardInvoice
	err := tx.WithContext(ctx).
		Where("business_id = ? AND card_id = ? AND reference_month = ?", card.BusinessId, card.ID, refMonth).
		First(&invoice).Error
	if err == nil {
		return &invoice, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, utils.NewStorageError(err)
	}

	closing, due := invoiceDates(month, card.ClosingDay, card.DueDay)
	invoice = CardInvoice{
		BusinessId:     card.BusinessId,
		CardId:         card.ID,
		ReferenceMonth: refMonth,
		TotalAmount:    decimal.Zero,
		ClosingDate:    closing,
		DueDate:        due,
		CurrentStatus:  InvoiceStatusOpen,
	}
	if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	return &invoice, nil
}

// routeCardPurchase creates one card expense line per installment, each in
// its own monthly bucket, and charges the card's available limit for the
// full total up front. Called inside the purchase transaction.
//
// A limit driven negative is allowed business state: it is logged, never
// blocked, and must not disturb the stock/cost mutations that follow.
func routeCardPurchase(ctx context.Context, tx *gorm.DB, businessId string, purchase *Purchase, card *CreditCard, categoryId int, installments []installmentAmount) error {

	// duplicate financial lines for this purchase number mean a retry raced
	// a previous attempt; refuse to double-charge
	var existing int64
	if err := tx.WithContext(ctx).Model(&CardExpenseLine{}).
		Where("business_id = ? AND purchase_number = ?", businessId, purchase.PurchaseNumber).
		Count(&existing).Error; err != nil {
		return utils.NewStorageError(err)
	}
	if existing > 0 {
		return utils.NewConflictError("card expense lines already exist for this purchase")
	}

	base := baseInvoiceMonth(purchase.PurchaseDate, card.ClosingDay)
	n := len(installments)

	for i, inst := range installments {
		month := base.AddDate(0, i, 0)
		invoice, err := getOrCreateCardInvoice(ctx, tx, card, month)
		if err != nil {
			return err
		}

		description := purchaseLineDescription(purchase, i+1, n)
		line := CardExpenseLine{
			BusinessId:     businessId,
			InvoiceId:      invoice.ID,
			CategoryId:     categoryId,
			Description:    description,
			Amount:         inst.Amount,
			PurchaseNumber: purchase.PurchaseNumber,
			InstallmentNo:  i + 1,
		}
		if err := tx.WithContext(ctx).Create(&line).Error; err != nil {
			return utils.NewStorageError(err)
		}

		// invoice total tracks its lines atomically
		if err := tx.WithContext(ctx).Model(&CardInvoice{}).
			Where("id = ?", invoice.ID).
			UpdateColumn("total_amount", gorm.Expr("total_amount + ?", inst.Amount)).Error; err != nil {
			return utils.NewStorageError(err)
		}
	}

	// the full total hits the limit immediately, regardless of installments
	if err := tx.WithContext(ctx).Model(&CreditCard{}).
		Where("business_id = ? AND id = ?", businessId, card.ID).
		UpdateColumn("available_limit", gorm.Expr("available_limit - ?", purchase.TotalAmount)).Error; err != nil {
		return utils.NewStorageError(err)
	}

	var availableAfter decimal.Decimal
	if err := tx.WithContext(ctx).Model(&CreditCard{}).
		Where("business_id = ? AND id = ?", businessId, card.ID).
		Select("available_limit").Scan(&availableAfter).Error; err != nil {
		return utils.NewStorageError(err)
	}
	if availableAfter.IsNegative() {
		logger := config.GetLogger()
		config.LogWarn(logger, "models", "routeCardPurchase",
			fmt.Sprintf("card %d available limit went negative (%s) on purchase %s", card.ID, availableAfter.String(), purchase.PurchaseNumber),
			purchase.PurchaseNumber)
	}

	return nil
}

func GetCreditCard(ctx context.Context, id int) (*CreditCard, error) {
	return GetResource[CreditCard](ctx, id)
}
