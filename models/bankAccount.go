package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierfoods/supply_backend/utils"
)

type BankAccount struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id" binding:"required"`
	AccountName    string          `gorm:"size:100;not null" json:"account_name" binding:"required"`
	BankName       string          `gorm:"size:100" json:"bank_name"`
	AccountNumber  string          `gorm:"size:50" json:"account_number"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_balance"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a BankAccount) GetBusinessId() string {
	return a.BusinessId
}

// BankTransaction records direct settlement of a purchase at creation time.
// Never written for card purchases; those settle at invoice payment.
type BankTransaction struct {
	ID              int                 `gorm:"primary_key" json:"id"`
	BusinessId      string              `gorm:"index;not null" json:"business_id"`
	BankAccountId   int                 `gorm:"index;not null" json:"bank_account_id"`
	TransactionType BankTransactionType `gorm:"size:10;not null" json:"transaction_type"`
	Amount          decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"amount"`
	BalanceAfter    decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"balance_after"`
	Description     string              `gorm:"size:255" json:"description"`
	PurchaseNumber  string              `gorm:"size:50;index" json:"purchase_number"`
	TransactionDate time.Time           `gorm:"not null" json:"transaction_date"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// debitBankAccount decrements the account balance in-store and writes the
// transaction row with a balance-after snapshot, all inside the caller's tx.
// The decrement is a single UPDATE so concurrent settlements cannot lose
// updates.
func debitBankAccount(ctx context.Context, tx *gorm.DB, businessId string, accountId int, amount decimal.Decimal, description string, purchaseNumber string, date time.Time) (*BankTransaction, error) {

	result := tx.WithContext(ctx).Model(&BankAccount{}).
		Where("business_id = ? AND id = ?", businessId, accountId).
		UpdateColumn("current_balance", gorm.Expr("current_balance - ?", amount))
	if result.Error != nil {
		return nil, utils.NewStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewNotFoundError("bank account not found")
	}

	var balanceAfter decimal.Decimal
	if err := tx.WithContext(ctx).Model(&BankAccount{}).
		Where("business_id = ? AND id = ?", businessId, accountId).
		Select("current_balance").Scan(&balanceAfter).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}

	bankTransaction := BankTransaction{
		BusinessId:      businessId,
		BankAccountId:   accountId,
		TransactionType: BankTransactionTypeDebit,
		Amount:          amount,
		BalanceAfter:    balanceAfter,
		Description:     description,
		PurchaseNumber:  purchaseNumber,
		TransactionDate: date,
	}
	if err := tx.WithContext(ctx).Create(&bankTransaction).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}
	return &bankTransaction, nil
}

func GetBankAccount(ctx context.Context, id int) (*BankAccount, error) {
	return GetResource[BankAccount](ctx, id)
}
