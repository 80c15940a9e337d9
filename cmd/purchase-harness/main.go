package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atelierfoods/supply_backend/config"
	"github.com/atelierfoods/supply_backend/models"
	"github.com/atelierfoods/supply_backend/utils"
)

// purchase-harness fires concurrent purchase creations against one tenant
// to reproduce identifier-collision and duplicate-financial-line races.
//
// Example:
//
//	go run ./cmd/purchase-harness \
//	  --business_id=... --supplier_id=1 --raw_material_id=3 \
//	  --unit_price=5.00 --qty=10 --attempts=20 --parallel=5
func main() {
	var (
		businessID    = flag.String("business_id", "", "business_id (required)")
		supplierID    = flag.Int("supplier_id", 0, "supplier_id (required)")
		rawMaterialID = flag.Int("raw_material_id", 0, "raw_material_id (required)")
		unitPrice     = flag.Float64("unit_price", 1, "unit price per purchased unit")
		qty           = flag.Float64("qty", 1, "purchased quantity")
		installments  = flag.Int("installments", 1, "installment count")
		attempts      = flag.Int("attempts", 10, "total purchases to create")
		parallel      = flag.Int("parallel", 5, "concurrent workers")
	)
	flag.Parse()

	if *businessID == "" || *supplierID == 0 || *rawMaterialID == 0 {
		fmt.Fprintln(os.Stderr, "missing required flags")
		flag.Usage()
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	ctx := utils.SetBusinessIdInContext(context.Background(), *businessID)

	work := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	numbers := make(map[string]int)
	var failures int

	for w := 0; w < *parallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range work {
				input := models.NewPurchase{
					SupplierId: *supplierID,
					RawMaterialLines: []models.InventoryLine{{
						ItemId:    *rawMaterialID,
						Qty:       decimal.NewFromFloat(*qty),
						UnitPrice: decimal.NewFromFloat(*unitPrice),
					}},
					PurchaseDate:     time.Now().UTC(),
					DueDate:          time.Now().UTC().AddDate(0, 1, 0),
					PaymentMethod:    models.PaymentMethodBankSlip,
					InstallmentCount: *installments,
				}
				purchase, err := models.CreatePurchase(ctx, &input)
				mu.Lock()
				if err != nil {
					failures++
					fmt.Printf("FAIL: %v\n", err)
				} else {
					numbers[purchase.PurchaseNumber]++
				}
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < *attempts; i++ {
		work <- i
	}
	close(work)
	wg.Wait()

	duplicates := 0
	for number, count := range numbers {
		if count > 1 {
			duplicates++
			fmt.Printf("DUPLICATE: %s used %d times\n", number, count)
		}
	}
	fmt.Printf("created=%d failed=%d distinct=%d duplicates=%d\n",
		*attempts-failures, failures, len(numbers), duplicates)
	if duplicates > 0 {
		os.Exit(1)
	}
}
