package models

import (
	"log"

	"github.com/atelierfoods/supply_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Supplier{},
		&ExpenseCategory{},
		&BankAccount{}, &BankTransaction{},
		&CreditCard{}, &CardInvoice{}, &CardExpenseLine{},
		&LedgerExpense{},
		&RawMaterial{}, &Supply{}, &FinishedGood{},
		&Recipe{}, &RecipeDetail{},
		&CostHistory{}, &StockMovement{},
		&Purchase{}, &PurchaseDetail{},
		&OutboxEventRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
