package models

import (
	"github.com/shopspring/decimal"

	"github.com/atelierfoods/supply_backend/utils"
)

type PurchaseTotals struct {
	RawMaterialSubtotal  decimal.Decimal
	SupplySubtotal       decimal.Decimal
	FinishedGoodSubtotal decimal.Decimal
	TaxAmount            decimal.Decimal
	TotalAmount          decimal.Decimal
}

func sumLines(lines []InventoryLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount())
	}
	return total
}

// calculatePurchaseTotals derives the per-class subtotals and the grand
// total (subtotals + tax). A purchase with no line items in any class is a
// validation error, never a zero-total purchase.
func calculatePurchaseTotals(rawMaterials, supplies, finishedGoods []InventoryLine, taxAmount decimal.Decimal) (*PurchaseTotals, error) {

	if len(rawMaterials) == 0 && len(supplies) == 0 && len(finishedGoods) == 0 {
		return nil, utils.NewValidationError("purchase requires at least one line item")
	}

	totals := PurchaseTotals{
		RawMaterialSubtotal:  sumLines(rawMaterials),
		SupplySubtotal:       sumLines(supplies),
		FinishedGoodSubtotal: sumLines(finishedGoods),
		TaxAmount:            taxAmount,
	}
	totals.TotalAmount = totals.RawMaterialSubtotal.
		Add(totals.SupplySubtotal).
		Add(totals.FinishedGoodSubtotal).
		Add(taxAmount)

	return &totals, nil
}
