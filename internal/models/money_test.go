package models

import (
	"errors"
	"testing"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{"whole amount", "19", 1900, false},
		{"two decimals", "19.99", 1999, false},
		{"one decimal", "0.5", 50, false},
		{"rounds half up", "0.005", 1, false},
		{"negative", "-3.50", -350, false},
		{"negative rounds away from zero", "-0.005", -1, false},
		{"leading whitespace", " 12.00 ", 1200, false},
		{"zero", "0", 0, false},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"not a number", "abc", 0, true},
		{"trailing garbage", "12.00usd", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCents(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCents(%q) expected error, got %d", tt.in, got)
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("ParseCents(%q) error = %v, want ErrInvalidInput", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCents(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMajorToCents(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{19.99, 1999},
		{0, 0},
		{0.005, 1},
		{-3.5, -350},
		{100, 10000},
	}
	for _, tt := range tests {
		if got := MajorToCents(tt.in); got != tt.want {
			t.Errorf("MajorToCents(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
