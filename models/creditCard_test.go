package models

import (
	"testing"
	"time"
)

func TestBaseInvoiceMonthBeforeClosing(t *testing.T) {
	purchaseDate := time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)
	month := baseInvoiceMonth(purchaseDate, 20)
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !month.Equal(want) {
		t.Fatalf("expected %s, got %s", want, month)
	}
}

func TestBaseInvoiceMonthOnClosingDayStays(t *testing.T) {
	purchaseDate := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	month := baseInvoiceMonth(purchaseDate, 20)
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !month.Equal(want) {
		t.Fatalf("purchase on the closing day belongs to the current bucket: expected %s, got %s", want, month)
	}
}

func TestBaseInvoiceMonthAfterClosingRollsForward(t *testing.T) {
	purchaseDate := time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)
	month := baseInvoiceMonth(purchaseDate, 20)
	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if !month.Equal(want) {
		t.Fatalf("expected roll-forward to %s, got %s", want, month)
	}
}

func TestBaseInvoiceMonthYearWrap(t *testing.T) {
	purchaseDate := time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC)
	month := baseInvoiceMonth(purchaseDate, 20)
	want := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	if !month.Equal(want) {
		t.Fatalf("december purchase after closing should land in january: expected %s, got %s", want, month)
	}
}

func TestInstallmentBucketsProgressMonthly(t *testing.T) {
	base := baseInvoiceMonth(time.Date(2026, 11, 25, 0, 0, 0, 0, time.UTC), 20)
	months := []string{}
	for i := 0; i < 3; i++ {
		months = append(months, referenceMonthKey(base.AddDate(0, i, 0)))
	}
	want := []string{"2026-12", "2027-01", "2027-02"}
	for i := range want {
		if months[i] != want[i] {
			t.Fatalf("installment %d expected bucket %s, got %s", i+1, want[i], months[i])
		}
	}
}

func TestDayOfMonthClamped(t *testing.T) {
	february := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	got := dayOfMonthClamped(february, 31)
	want := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected clamp to %s, got %s", want, got)
	}

	leapFebruary := time.Date(2028, 2, 1, 0, 0, 0, 0, time.UTC)
	got = dayOfMonthClamped(leapFebruary, 31)
	want = time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected leap-year clamp to %s, got %s", want, got)
	}
}

func TestInvoiceDates(t *testing.T) {
	refMonth := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	closing, due := invoiceDates(refMonth, 20, 27)
	if closing.Day() != 20 || closing.Month() != time.March {
		t.Fatalf("unexpected closing date %s", closing)
	}
	if due.Day() != 27 || due.Month() != time.March {
		t.Fatalf("due day after closing day stays in the month, got %s", due)
	}

	// due day at or before closing day pays next month
	_, due = invoiceDates(refMonth, 20, 5)
	if due.Month() != time.April || due.Day() != 5 {
		t.Fatalf("expected due date 2026-04-05, got %s", due)
	}
}
