package models

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestPurchaseMonthPrefix(t *testing.T) {
	prefix := purchaseMonthPrefix(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	if prefix != "PC-202603-" {
		t.Fatalf("expected PC-202603-, got %s", prefix)
	}
}

func TestParsePurchaseCounter(t *testing.T) {
	tests := []struct {
		number  string
		counter int
		ok      bool
	}{
		{"PC-202603-0001", 1, true},
		{"PC-202603-0042", 42, true},
		{"PC-202603-9999", 9999, true},
		{"PC-202603-10000", 10000, true},
		{"PC-202602-0001", 0, false},
		{"PC-202603-", 0, false},
		{"PC-202603-abc", 0, false},
		{"PC-202603--5", 0, false},
		{"garbage", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		counter, ok := parsePurchaseCounter(tc.number, "PC-202603-")
		if ok != tc.ok || counter != tc.counter {
			t.Fatalf("parsePurchaseCounter(%q) = (%d, %v), want (%d, %v)", tc.number, counter, ok, tc.counter, tc.ok)
		}
	}
}

func TestStartingCounterEmptyMaxStartsAtZero(t *testing.T) {
	counter := startingCounter("", "PC-202603-", time.Now().UTC())
	if counter != 0 {
		t.Fatalf("expected 0 for an empty month, got %d", counter)
	}
}

func TestStartingCounterUsesParsedMax(t *testing.T) {
	counter := startingCounter("PC-202603-0037", "PC-202603-", time.Now().UTC())
	if counter != 37 {
		t.Fatalf("expected 37, got %d", counter)
	}
}

func TestStartingCounterMalformedMaxFallsBackToTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 123456789, time.UTC)
	counter := startingCounter("PC-202603-not-a-number", "PC-202603-", now)
	if counter != timeDerivedCounter(now) {
		t.Fatalf("expected time-derived counter %d, got %d", timeDerivedCounter(now), counter)
	}
	if counter < 0 || counter >= 10000 {
		t.Fatalf("time-derived counter out of range: %d", counter)
	}
}

func TestFallbackPurchaseNumberShape(t *testing.T) {
	now := time.Now().UTC()
	number := fallbackPurchaseNumber("PC-202603-", now)
	if !strings.HasPrefix(number, "PC-202603-") {
		t.Fatalf("fallback must keep the month prefix, got %s", number)
	}
	rest := strings.TrimPrefix(number, "PC-202603-")
	parts := strings.Split(rest, "-")
	if len(parts) != 2 {
		t.Fatalf("expected timestamp-fragment suffix, got %s", rest)
	}
	if parts[0] != fmt.Sprintf("%d", now.UnixNano()) {
		t.Fatalf("expected nanosecond timestamp %d, got %s", now.UnixNano(), parts[0])
	}
	if len(parts[1]) != 8 {
		t.Fatalf("expected 8-char random fragment, got %q", parts[1])
	}
}

func TestFallbackPurchaseNumberNeverParsesAsCounter(t *testing.T) {
	number := fallbackPurchaseNumber("PC-202603-", time.Now().UTC())
	if _, ok := parsePurchaseCounter(number, "PC-202603-"); ok {
		t.Fatalf("fallback number %s must not look like a sequential counter", number)
	}
}
