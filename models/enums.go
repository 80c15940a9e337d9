package models

type PurchaseStatus string

const (
	PurchaseStatusPending PurchaseStatus = "PENDING"
	PurchaseStatusPaid    PurchaseStatus = "PAID"
)

func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusPaid:
		return true
	}
	return false
}

func (s PurchaseStatus) String() string { return string(s) }

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodBankTransfer PaymentMethod = "BankTransfer"
	PaymentMethodBankSlip     PaymentMethod = "BankSlip"
	PaymentMethodCreditCard   PaymentMethod = "CreditCard"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodBankSlip, PaymentMethodCreditCard:
		return true
	}
	return false
}

func (m PaymentMethod) IsCard() bool { return m == PaymentMethodCreditCard }

// ItemKind tags which inventory class a purchase line belongs to.
// 'R' raw material, 'S' supply, 'F' finished good.
type ItemKind string

const (
	ItemKindRawMaterial  ItemKind = "R"
	ItemKindSupply       ItemKind = "S"
	ItemKindFinishedGood ItemKind = "F"
)

func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindRawMaterial, ItemKindSupply, ItemKindFinishedGood:
		return true
	}
	return false
}

type ExpenseStatus string

const (
	ExpenseStatusPending ExpenseStatus = "PENDING"
	ExpenseStatusPaid    ExpenseStatus = "PAID"
)

type InvoiceStatus string

const (
	InvoiceStatusOpen   InvoiceStatus = "OPEN"
	InvoiceStatusClosed InvoiceStatus = "CLOSED"
	InvoiceStatusPaid   InvoiceStatus = "PAID"
)

type StockMovementType string

const (
	StockMovementTypeIn  StockMovementType = "IN"
	StockMovementTypeOut StockMovementType = "OUT"
)

type StockMovementReason string

const (
	StockMovementReasonPurchase   StockMovementReason = "PURCHASE"
	StockMovementReasonSale       StockMovementReason = "SALE"
	StockMovementReasonAdjustment StockMovementReason = "ADJUSTMENT"
)

type CostChangeReason string

const (
	CostChangeReasonPurchase CostChangeReason = "PURCHASE"
	CostChangeReasonManual   CostChangeReason = "MANUAL"
)

type BankTransactionType string

const (
	BankTransactionTypeDebit  BankTransactionType = "DEBIT"
	BankTransactionTypeCredit BankTransactionType = "CREDIT"
)

// Fixed expense category labels for non-supply purchase compositions.
// Supply-only purchases carry the caller-selected category instead.
const (
	CategoryLabelRawMaterials = "Raw Materials"
	CategoryLabelResaleGoods  = "Resale Goods"
	CategoryLabelMixed        = "Mixed Purchase"
	CategoryLabelGeneral      = "General"
)

type OutboxEventType string

const (
	OutboxEventTypeCostBasisChanged OutboxEventType = "COST_BASIS_CHANGED"
)
