package money

import (
	"errors"
	"testing"
)

func TestAddSameCurrency(t *testing.T) {
	sum, err := New(15000, "NGN").Add(New(3000, "NGN"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if sum.Value != 18000 || sum.Currency != "NGN" {
		t.Fatalf("expected 18000 NGN, got %s", sum)
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	_, err := New(100, "NGN").Add(New(100, "USD"))
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestMulCountExact(t *testing.T) {
	got := New(5000, "NGN").MulCount(3)
	if got.Value != 15000 {
		t.Fatalf("expected 15000, got %d", got.Value)
	}
}

func TestPercentBps(t *testing.T) {
	tests := []struct {
		value int64
		bps   int64
		want  int64
	}{
		{15000, 100, 150},  // 1% of 15000
		{10000, 100, 100},  // 1% of 10000
		{99, 100, 1},       // 0.99 rounds half up to 1
		{49, 100, 0},       // 0.49 rounds down
		{50, 100, 1},       // 0.50 rounds up
		{15000, 250, 375},  // 2.5%
		{0, 100, 0},
	}
	for _, tt := range tests {
		got := New(tt.value, "NGN").PercentBps(tt.bps)
		if got.Value != tt.want {
			t.Errorf("PercentBps(%d, %d) = %d, want %d", tt.value, tt.bps, got.Value, tt.want)
		}
	}
}

func TestNormalizeCurrency(t *testing.T) {
	if got := NormalizeCurrency(" ngn "); got != "NGN" {
		t.Fatalf("expected NGN, got %q", got)
	}
}
