package types

import (
	"encoding/json"
	"testing"
)

func TestAmountConstructors(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		units   string
		display string
	}{
		{"One base unit", NewAmount(1), "1", "0.000000000000000001"},
		{"Zero", Amount{}, "0", "0"},
		{"Whole tokens", Tokens(100), "100000000000000000000", "100"},
		{"Genesis supply", Tokens(100_000_000), "100000000000000000000000000", "100,000,000"},
		{"Rebased", MustParseAmount("100016030912247000000"), "100016030912247000000", "100.016030912247"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.String(); got != tt.units {
				t.Errorf("String: got %s, want %s", got, tt.units)
			}
			if got := tt.amount.Display(); got != tt.display {
				t.Errorf("Display: got %s, want %s", got, tt.display)
			}
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Amount
		expected Amount
	}{
		{"Add", func() Amount { return NewAmount(100).Add(NewAmount(200)) }, NewAmount(300)},
		{"Sub", func() Amount { return NewAmount(500).Sub(NewAmount(200)) }, NewAmount(300)},
		{"MulDiv bps", func() Amount { return NewAmount(1000).MulDiv(1500, 10000) }, NewAmount(150)},
		{"MulDiv floors", func() Amount { return NewAmount(999).MulDiv(1, 10) }, NewAmount(99)},
		{"Sum", func() Amount { return Sum(NewAmount(1), NewAmount(2), NewAmount(3)) }, NewAmount(6)},
		{"Min", func() Amount { return NewAmount(7).Min(NewAmount(3)) }, NewAmount(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAmountSubUnderflow(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for subtraction underflow")
		}
	}()

	_ = NewAmount(1).Sub(NewAmount(2))
}

func TestAmountCheckedSub(t *testing.T) {
	if _, ok := NewAmount(1).CheckedSub(NewAmount(2)); ok {
		t.Error("expected underflow to be reported")
	}
	got, ok := NewAmount(5).CheckedSub(NewAmount(2))
	if !ok || !got.Equal(NewAmount(3)) {
		t.Errorf("CheckedSub: got %v (%v), want 3", got, ok)
	}
}

func TestAmountComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Amount
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", NewAmount(100), NewAmount(100), false, false, true},
		{"Less", NewAmount(50), NewAmount(100), true, false, false},
		{"Greater", Tokens(1), NewAmount(100), false, true, false},
		{"Zero equal", NewAmount(0), Amount{}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestParseTokens(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1", "1000000000000000000", false},
		{"1000.5", "1000500000000000000000", false},
		{"0.000000000000000001", "1", false},
		{"0.0000000000000000019", "1", false},
		{"-1", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTokens(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAmountJSON(t *testing.T) {
	in := struct {
		Balance Amount `json:"balance"`
	}{Balance: MustParseAmount("100016030912247000000")}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"balance":"100016030912247000000"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var out struct {
		Balance Amount `json:"balance"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Balance.Equal(in.Balance) {
		t.Errorf("got %v, want %v", out.Balance, in.Balance)
	}
}
