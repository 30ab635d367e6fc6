package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func TestParseAmount(t *testing.T) {
	t.Run("rounds half up to two decimals", func(t *testing.T) {
		got, err := ParseAmount(10.005)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(dec(t, "10.01")) {
			t.Fatalf("got %s, want 10.01", got)
		}
	})

	t.Run("truncates nothing below half", func(t *testing.T) {
		got, err := ParseAmount(10.004)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(dec(t, "10.00")) {
			t.Fatalf("got %s, want 10.00", got)
		}
	})

	t.Run("rejects NaN and Inf", func(t *testing.T) {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			if _, err := ParseAmount(v); !errors.Is(err, ErrInvalidOrder) {
				t.Fatalf("ParseAmount(%v) = %v, want ErrInvalidOrder", v, err)
			}
		}
	})
}

func TestNewOrderValidation(t *testing.T) {
	cases := []struct {
		name     string
		userID   string
		side     OrderSide
		price    string
		quantity string
	}{
		{"zero price", "u1", OrderSideBuy, "0", "1.00"},
		{"negative price", "u1", OrderSideBuy, "-1.00", "1.00"},
		{"zero quantity", "u1", OrderSideSell, "10.00", "0"},
		{"negative quantity", "u1", OrderSideSell, "10.00", "-0.01"},
		{"blank user", "  ", OrderSideBuy, "10.00", "1.00"},
		{"bad side", "u1", OrderSide("HOLD"), "10.00", "1.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder("o1", tc.userID, "BTC-USDT", tc.side, dec(t, tc.price), dec(t, tc.quantity))
			if !errors.Is(err, ErrInvalidOrder) {
				t.Fatalf("got %v, want ErrInvalidOrder", err)
			}
		})
	}

	t.Run("valid order starts open and unfilled", func(t *testing.T) {
		o, err := NewOrder("o1", "u1", "BTC-USDT", OrderSideBuy, dec(t, "10.507"), dec(t, "2.00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Status != OrderStatusOpen {
			t.Fatalf("status = %s, want OPEN", o.Status)
		}
		if !o.Price.Equal(dec(t, "10.51")) {
			t.Fatalf("price = %s, want rounded 10.51", o.Price)
		}
		if !o.FilledQuantity.IsZero() {
			t.Fatalf("filled = %s, want 0", o.FilledQuantity)
		}
	})
}

func TestApplyFill(t *testing.T) {
	newBuy := func(t *testing.T) *Order {
		t.Helper()
		o, err := NewOrder("o1", "u1", "BTC-USDT", OrderSideBuy, dec(t, "10.00"), dec(t, "5.00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return o
	}

	t.Run("partial then full", func(t *testing.T) {
		o := newBuy(t)
		if err := o.ApplyFill(dec(t, "2.00")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Status != OrderStatusPartiallyFilled {
			t.Fatalf("status = %s, want PARTIALLY_FILLED", o.Status)
		}
		if !o.RemainingQuantity().Equal(dec(t, "3.00")) {
			t.Fatalf("remaining = %s, want 3.00", o.RemainingQuantity())
		}

		if err := o.ApplyFill(dec(t, "3.00")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if o.Status != OrderStatusFilled {
			t.Fatalf("status = %s, want FILLED", o.Status)
		}
		if !o.IsFilled() {
			t.Fatal("expected order to report filled")
		}
	})

	t.Run("overfill aborts", func(t *testing.T) {
		o := newBuy(t)
		if err := o.ApplyFill(dec(t, "5.01")); !errors.Is(err, ErrPrecisionViolation) {
			t.Fatalf("got %v, want ErrPrecisionViolation", err)
		}
		if !o.FilledQuantity.IsZero() {
			t.Fatalf("filled mutated to %s on failed fill", o.FilledQuantity)
		}
	})

	t.Run("non-positive fill aborts", func(t *testing.T) {
		o := newBuy(t)
		for _, q := range []string{"0", "-1.00"} {
			if err := o.ApplyFill(dec(t, q)); !errors.Is(err, ErrPrecisionViolation) {
				t.Fatalf("ApplyFill(%s) = %v, want ErrPrecisionViolation", q, err)
			}
		}
	})
}

func TestDeriveStatus(t *testing.T) {
	t.Run("sub-cent remainder counts as filled", func(t *testing.T) {
		if got := DeriveStatus(dec(t, "1.00"), dec(t, "0.996")); got != OrderStatusFilled {
			t.Fatalf("got %s, want FILLED", got)
		}
	})
	t.Run("full cent remainder stays partially filled", func(t *testing.T) {
		if got := DeriveStatus(dec(t, "1.00"), dec(t, "0.99")); got != OrderStatusPartiallyFilled {
			t.Fatalf("got %s, want PARTIALLY_FILLED", got)
		}
	})
}

func TestCrosses(t *testing.T) {
	buy := &Order{Side: OrderSideBuy, Price: dec(t, "10.00")}

	sellAt := func(p string) *Order {
		return &Order{Side: OrderSideSell, Price: dec(t, p)}
	}

	if !buy.Crosses(sellAt("9.99")) {
		t.Fatal("buy 10.00 should cross sell 9.99")
	}
	if !buy.Crosses(sellAt("10.00")) {
		t.Fatal("equal prices should cross")
	}
	if buy.Crosses(sellAt("10.01")) {
		t.Fatal("buy 10.00 must not cross sell 10.01")
	}

	sell := &Order{Side: OrderSideSell, Price: dec(t, "10.00")}
	if !sell.Crosses(&Order{Side: OrderSideBuy, Price: dec(t, "10.00")}) {
		t.Fatal("sell 10.00 should cross buy 10.00")
	}
	if sell.Crosses(&Order{Side: OrderSideBuy, Price: dec(t, "9.99")}) {
		t.Fatal("sell 10.00 must not cross buy 9.99")
	}
}
