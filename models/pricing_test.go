package models

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atelierfoods/supply_backend/utils"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func line(itemId int, qty, unitPrice string) InventoryLine {
	return InventoryLine{ItemId: itemId, Qty: d(qty), UnitPrice: d(unitPrice)}
}

func TestCalculatePurchaseTotals(t *testing.T) {
	totals, err := calculatePurchaseTotals(
		[]InventoryLine{line(1, "10", "5.00")},
		nil,
		nil,
		d("2.00"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.RawMaterialSubtotal.Equal(d("50.00")) {
		t.Fatalf("raw material subtotal expected 50.00, got %s", totals.RawMaterialSubtotal)
	}
	if !totals.TotalAmount.Equal(d("52.00")) {
		t.Fatalf("total expected 52.00, got %s", totals.TotalAmount)
	}
}

func TestCalculatePurchaseTotalsAllCategories(t *testing.T) {
	totals, err := calculatePurchaseTotals(
		[]InventoryLine{line(1, "2", "10.00"), line(2, "1", "3.50")},
		[]InventoryLine{line(3, "5", "1.20")},
		[]InventoryLine{line(4, "3", "7.00")},
		d("1.50"),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.RawMaterialSubtotal.Equal(d("23.50")) {
		t.Fatalf("raw material subtotal expected 23.50, got %s", totals.RawMaterialSubtotal)
	}
	if !totals.SupplySubtotal.Equal(d("6.00")) {
		t.Fatalf("supply subtotal expected 6.00, got %s", totals.SupplySubtotal)
	}
	if !totals.FinishedGoodSubtotal.Equal(d("21.00")) {
		t.Fatalf("finished good subtotal expected 21.00, got %s", totals.FinishedGoodSubtotal)
	}
	if !totals.TotalAmount.Equal(d("52.00")) {
		t.Fatalf("total expected 52.00, got %s", totals.TotalAmount)
	}
}

func TestCalculatePurchaseTotalsRejectsEmpty(t *testing.T) {
	_, err := calculatePurchaseTotals(nil, nil, nil, d("2.00"))
	if err == nil {
		t.Fatal("expected validation error for purchase with no line items")
	}
	if utils.KindOf(err) != utils.ErrorKindValidation {
		t.Fatalf("expected validation kind, got %s", utils.KindOf(err))
	}
}

func TestCalculatePurchaseTotalsZeroTax(t *testing.T) {
	totals, err := calculatePurchaseTotals(
		nil,
		[]InventoryLine{line(1, "4", "2.25")},
		nil,
		decimal.Zero,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.TotalAmount.Equal(d("9.00")) {
		t.Fatalf("total expected 9.00, got %s", totals.TotalAmount)
	}
}
