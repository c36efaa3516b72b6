package models

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Money
		wantErr bool
	}{
		{name: "whole", in: "40", want: 4000},
		{name: "two decimals", in: "40.00", want: 4000},
		{name: "one decimal", in: "40.5", want: 4050},
		{name: "cents only", in: "0.07", want: 7},
		{name: "leading dot", in: ".50", want: 50},
		{name: "negative", in: "-12.34", want: -1234},
		{name: "zero", in: "0", want: 0},
		{name: "three decimals rejected", in: "1.005", wantErr: true},
		{name: "empty rejected", in: "", wantErr: true},
		{name: "garbage rejected", in: "abc", wantErr: true},
		{name: "exponent rejected", in: "1e2", wantErr: true},
		{name: "signed fraction rejected", in: "4.-5", wantErr: true},
		{name: "plus in fraction rejected", in: "4.+5", wantErr: true},
		{name: "bare sign rejected", in: "-", wantErr: true},
		{name: "bare plus rejected", in: "+", wantErr: true},
		{name: "bare dot rejected", in: ".", wantErr: true},
		{name: "overflow rejected", in: "92233720368547758.08", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMoney(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoney(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMoney(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{4000, "40.00"},
		{6000, "60.00"},
		{7, "0.07"},
		{0, "0.00"},
		{-1234, "-12.34"},
		{10001, "100.01"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Money(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte("40.00"), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m != 4000 {
		t.Fatalf("unmarshal = %d, want 4000", m)
	}

	out, err := json.Marshal(Money(6000))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "60.00" {
		t.Errorf("marshal = %s, want 60.00", out)
	}

	// Quoted decimal strings are accepted too
	if err := json.Unmarshal([]byte(`"99.99"`), &m); err != nil {
		t.Fatalf("unmarshal quoted: %v", err)
	}
	if m != 9999 {
		t.Errorf("unmarshal quoted = %d, want 9999", m)
	}
}

// Repeated partial subtraction stays exact, which float64 arithmetic on
// values like 0.10 would not guarantee.
func TestMoneyNoDrift(t *testing.T) {
	balance := Money(10000) // 100.00
	step := Money(10)       // 0.10
	for i := 0; i < 1000; i++ {
		balance -= step
	}
	if balance != 0 {
		t.Errorf("balance after 1000 payments of 0.10 = %s, want 0.00", balance)
	}
}
