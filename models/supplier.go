package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelierfoods/supply_backend/config"
	"github.com/atelierfoods/supply_backend/utils"
)

type Supplier struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id" binding:"required"`
	Name           string          `gorm:"size:100;not null" json:"name" binding:"required"`
	TradeName      string          `gorm:"size:100" json:"trade_name"`
	Email          string          `gorm:"size:100" json:"email"`
	Phone          string          `gorm:"size:20" json:"phone"`
	TaxNumber      string          `gorm:"size:30" json:"tax_number"`
	Notes          string          `gorm:"type:text" json:"notes"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"opening_balance"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name           string          `json:"name" binding:"required"`
	TradeName      string          `json:"trade_name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	TaxNumber      string          `json:"tax_number"`
	Notes          string          `json:"notes"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

func (s Supplier) GetBusinessId() string {
	return s.BusinessId
}

func (input *NewSupplier) validate(ctx context.Context, businessId string, id int) error {
	if input.Name == "" {
		return utils.NewValidationError("supplier name is required")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("supplier phone number is not valid")
		}
	}
	if err := utils.ValidateUnique[Supplier](ctx, businessId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, utils.NewValidationError("business id is required")
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	supplier := Supplier{
		BusinessId:     businessId,
		Name:           input.Name,
		TradeName:      input.TradeName,
		Email:          input.Email,
		Phone:          input.Phone,
		TaxNumber:      input.TaxNumber,
		Notes:          input.Notes,
		OpeningBalance: input.OpeningBalance,
		IsActive:       utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, utils.NewStorageError(err)
	}

	return &supplier, nil
}

func GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	return GetResource[Supplier](ctx, id)
}

func ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, utils.NewValidationError("business id is required")
	}
	return utils.FetchAllModels[Supplier](ctx, businessId)
}
