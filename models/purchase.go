package models

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/atelierfoods/supply_backend/config"
	"github.com/atelierfoods/supply_backend/utils"
)

// Purchase is the aggregate root of the purchasing core. Line items are
// immutable after creation; status may move PENDING -> PAID exactly once,
// either immediately at creation or later through the payment flow.
type Purchase struct {
	ID                   int              `gorm:"primary_key" json:"id"`
	BusinessId           string           `gorm:"index:uniq_purchase_number,unique;not null" json:"business_id"`
	PurchaseNumber       string           `gorm:"size:50;index:uniq_purchase_number,unique;not null" json:"purchase_number"`
	SupplierId           int              `gorm:"index;not null" json:"supplier_id" binding:"required"`
	SupplierName         string           `gorm:"size:100" json:"supplier_name"`
	PurchaseDate         time.Time        `gorm:"not null" json:"purchase_date" binding:"required"`
	DueDate              time.Time        `gorm:"not null" json:"due_date" binding:"required"`
	PaymentMethod        PaymentMethod    `gorm:"size:20;not null" json:"payment_method" binding:"required"`
	BankAccountId        *int             `json:"bank_account_id"`
	CardId               *int             `json:"card_id"`
	LedgerExpenseId      *int             `json:"ledger_expense_id"`
	InstallmentCount     int              `gorm:"not null;default:1" json:"installment_count"`
	TaxAmount            decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	RawMaterialSubtotal  decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"raw_material_subtotal"`
	SupplySubtotal       decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"supply_subtotal"`
	FinishedGoodSubtotal decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"finished_good_subtotal"`
	TotalAmount          decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	CurrentStatus        PurchaseStatus   `gorm:"size:10;not null;default:'PENDING'" json:"current_status"`
	Notes                string           `gorm:"type:text" json:"notes"`
	InvoiceNumber        string           `gorm:"size:50" json:"invoice_number"`
	Details              []PurchaseDetail `json:"details"`
	CreatedAt            time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Purchase) GetBusinessId() string {
	return p.BusinessId
}

type PurchaseDetail struct {
	ID         int             `gorm:"primary_key" json:"id"`
	PurchaseId int             `gorm:"index;not null" json:"purchase_id"`
	ItemKind   ItemKind        `gorm:"size:1;not null" json:"item_kind"`
	ItemId     int             `gorm:"index;not null" json:"item_id"`
	Qty        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
}

// NewPurchase is the single entry point's request shape (the HTTP layer
// binds JSON straight into it).
type NewPurchase struct {
	SupplierId          int             `json:"supplier_id" binding:"required"`
	RawMaterialLines    []InventoryLine `json:"raw_material_lines"`
	SupplyLines         []InventoryLine `json:"supply_lines"`
	FinishedGoodLines   []InventoryLine `json:"finished_good_lines"`
	SupplyCategoryId    *int            `json:"supply_category_id"`
	PurchaseDate        time.Time       `json:"purchase_date" binding:"required"`
	DueDate             time.Time       `json:"due_date"`
	PaymentMethod       PaymentMethod   `json:"payment_method" binding:"required"`
	BankAccountId       *int            `json:"bank_account_id"`
	CardId              *int            `json:"card_id"`
	InstallmentCount    int             `json:"installment_count"`
	InstallmentDueDates []time.Time     `json:"installment_due_dates"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	Notes               string          `json:"notes"`
	InvoiceNumber       string          `json:"invoice_number"`
	InitialStatus       PurchaseStatus  `json:"initial_status"`
}

// inventoryLines tags and flattens the three class collections into the
// unified shape the mutator consumes.
func (input *NewPurchase) inventoryLines() []InventoryLine {
	lines := make([]InventoryLine, 0, len(input.RawMaterialLines)+len(input.SupplyLines)+len(input.FinishedGoodLines))
	for _, line := range input.RawMaterialLines {
		line.Kind = ItemKindRawMaterial
		lines = append(lines, line)
	}
	for _, line := range input.SupplyLines {
		line.Kind = ItemKindSupply
		lines = append(lines, line)
	}
	for _, line := range input.FinishedGoodLines {
		line.Kind = ItemKindFinishedGood
		lines = append(lines, line)
	}
	return lines
}

// validate rejects bad requests before any mutation happens.
func (input *NewPurchase) validate() error {
	if input.SupplierId <= 0 {
		return utils.NewValidationError("supplier is required")
	}
	if len(input.RawMaterialLines) == 0 && len(input.SupplyLines) == 0 && len(input.FinishedGoodLines) == 0 {
		return utils.NewValidationError("purchase requires at least one line item")
	}
	if input.PurchaseDate.IsZero() {
		return utils.NewValidationError("purchase date is required")
	}
	if input.DueDate.IsZero() {
		return utils.NewValidationError("due date is required")
	}
	if !input.PaymentMethod.IsValid() {
		return utils.NewValidationError("invalid payment method")
	}
	if input.PaymentMethod.IsCard() && (input.CardId == nil || *input.CardId <= 0) {
		return utils.NewValidationError("card payment requires a card reference")
	}
	if input.InstallmentCount < 0 {
		return utils.NewValidationError("installment count cannot be negative")
	}
	if input.InitialStatus != "" && !input.InitialStatus.IsValid() {
		return utils.NewValidationError("invalid initial status")
	}
	if input.TaxAmount.IsNegative() {
		return utils.NewValidationError("tax amount cannot be negative")
	}
	for _, line := range input.inventoryLines() {
		if line.ItemId <= 0 {
			return utils.NewValidationError("line item reference is required")
		}
		if !line.Qty.IsPositive() {
			return utils.NewValidationError("line qty must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return utils.NewValidationError("line unit price cannot be negative")
		}
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// CreatePurchase is the single atomic unit of work behind creating a
// supplier purchase: identifier reservation, pricing, payment routing,
// inventory/cost mutation and optional bank settlement either all commit
// together or none do.
func CreatePurchase(ctx context.Context, input *NewPurchase) (*Purchase, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, utils.NewValidationError("business id is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	supplier, err := utils.FetchModel[Supplier](ctx, businessId, input.SupplierId)
	if err != nil {
		return nil, utils.NewNotFoundError("supplier not found")
	}

	var card *CreditCard
	if input.PaymentMethod.IsCard() {
		card, err = utils.FetchModel[CreditCard](ctx, businessId, *input.CardId)
		if err != nil {
			return nil, utils.NewNotFoundError("credit card not found")
		}
	}
	if input.BankAccountId != nil && *input.BankAccountId > 0 {
		if err := utils.ValidateResourceId[BankAccount](ctx, businessId, *input.BankAccountId); err != nil {
			return nil, utils.NewNotFoundError("bank account not found")
		}
	}

	totals, err := calculatePurchaseTotals(input.RawMaterialLines, input.SupplyLines, input.FinishedGoodLines, input.TaxAmount)
	if err != nil {
		return nil, err
	}

	installmentCount := input.InstallmentCount
	if installmentCount == 0 {
		installmentCount = 1
	}
	status := input.InitialStatus
	if status == "" {
		status = PurchaseStatusPending
	}

	// serialize purchase creation per tenant; the unique index on the
	// purchase number remains the correctness backstop
	lock, err := utils.BusinessLock(ctx, businessId, "PurchaseCreateLock")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseLock(ctx, lock)

	db := config.GetDB()
	tx := db.Begin()
	if tx.Error != nil {
		return nil, utils.NewStorageError(tx.Error)
	}

	purchaseNumber, err := nextPurchaseNumber(ctx, tx, businessId, input.PurchaseDate)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	lines := input.inventoryLines()
	details := make([]PurchaseDetail, 0, len(lines))
	for _, line := range lines {
		details = append(details, PurchaseDetail{
			ItemKind:  line.Kind,
			ItemId:    line.ItemId,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount(),
		})
	}

	purchase := Purchase{
		BusinessId:           businessId,
		PurchaseNumber:       purchaseNumber,
		SupplierId:           supplier.ID,
		SupplierName:         supplier.Name,
		PurchaseDate:         input.PurchaseDate,
		DueDate:              input.DueDate,
		PaymentMethod:        input.PaymentMethod,
		BankAccountId:        input.BankAccountId,
		CardId:               input.CardId,
		InstallmentCount:     installmentCount,
		TaxAmount:            totals.TaxAmount,
		RawMaterialSubtotal:  totals.RawMaterialSubtotal,
		SupplySubtotal:       totals.SupplySubtotal,
		FinishedGoodSubtotal: totals.FinishedGoodSubtotal,
		TotalAmount:          totals.TotalAmount,
		CurrentStatus:        status,
		Notes:                input.Notes,
		InvoiceNumber:        input.InvoiceNumber,
		Details:              details,
	}

	categoryId, err := resolvePurchaseCategory(ctx, tx, businessId, input)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	installments := splitInstallments(totals.TotalAmount, installmentCount)

	// payment routing: card purchases never touch the ledger and vice versa
	if input.PaymentMethod.IsCard() {
		if err := routeCardPurchase(ctx, tx, businessId, &purchase, card, categoryId, installments); err != nil {
			tx.Rollback()
			return nil, err
		}
	} else {
		firstExpense, err := routeDirectLedger(ctx, tx, businessId, &purchase, categoryId, installments, input.InstallmentDueDates)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		purchase.LedgerExpenseId = &firstExpense.ID
	}

	if err := applyInventoryLines(ctx, tx, businessId, &purchase, lines); err != nil {
		tx.Rollback()
		return nil, err
	}

	// settle through the bank only when paid up front and not on a card;
	// card purchases settle at invoice payment time
	if purchase.CurrentStatus == PurchaseStatusPaid && !input.PaymentMethod.IsCard() &&
		input.BankAccountId != nil && *input.BankAccountId > 0 {
		description := "Purchase " + purchase.PurchaseNumber + " - " + supplier.Name
		if _, err := debitBankAccount(ctx, tx, businessId, *input.BankAccountId, purchase.TotalAmount, description, purchase.PurchaseNumber, purchase.PurchaseDate); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// the aggregate itself is persisted last, after every sub-step succeeded
	if err := tx.WithContext(ctx).Create(&purchase).Error; err != nil {
		tx.Rollback()
		if isDuplicateKeyError(err) {
			return nil, utils.NewConflictError("purchase number already exists, retry the request")
		}
		return nil, utils.NewStorageError(err)
	}

	if err := tx.Commit().Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, utils.NewConflictError("purchase number already exists, retry the request")
		}
		return nil, utils.NewStorageError(err)
	}

	evictPurchaseCaches(input, lines)

	return &purchase, nil
}

// evictPurchaseCaches drops cached copies of every resource the committed
// purchase mutated so subsequent reads see the new stock, cost, limit and
// balance values.
func evictPurchaseCaches(input *NewPurchase, lines []InventoryLine) {
	ids := map[ItemKind][]int{}
	for _, line := range lines {
		ids[line.Kind] = append(ids[line.Kind], line.ItemId)
	}
	for _, id := range utils.UniqueSlice(ids[ItemKindRawMaterial]) {
		_ = utils.RemoveRedisItem[RawMaterial](id)
	}
	for _, id := range utils.UniqueSlice(ids[ItemKindSupply]) {
		_ = utils.RemoveRedisItem[Supply](id)
	}
	for _, id := range utils.UniqueSlice(ids[ItemKindFinishedGood]) {
		_ = utils.RemoveRedisItem[FinishedGood](id)
	}
	if input.CardId != nil && *input.CardId > 0 {
		_ = utils.RemoveRedisItem[CreditCard](*input.CardId)
	}
	if input.BankAccountId != nil && *input.BankAccountId > 0 {
		_ = utils.RemoveRedisItem[BankAccount](*input.BankAccountId)
	}
}

func GetPurchase(ctx context.Context, id int) (*Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, utils.NewValidationError("business id is required")
	}
	return utils.FetchModel[Purchase](ctx, businessId, id, "Details")
}

// GetPurchaseByNumber is how retrying callers check whether a previous
// attempt actually landed.
func GetPurchaseByNumber(ctx context.Context, purchaseNumber string) (*Purchase, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, utils.NewValidationError("business id is required")
	}
	db := config.GetDB()
	var purchase Purchase
	err := db.WithContext(ctx).Preload("Details").
		Where("business_id = ? AND purchase_number = ?", businessId, purchaseNumber).
		First(&purchase).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &purchase, nil
}
