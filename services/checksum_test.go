package services

import (
	"strconv"
	"testing"
)

func TestIsValidCardNumber(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"4000000000000002", true},
		{"4532015112830366", true},
		{"5500000000000004", true},
		{"4000001234567899", true},
		{"4000001234567890", false},
		{"4000000000000001", false},
		{"", false},
		{"not-a-card", false},
		{"400000000000000a", false},
		{"4000 0000 0000 0002", false},
	}
	for _, tt := range tests {
		if got := IsValidCardNumber(tt.number); got != tt.want {
			t.Errorf("IsValidCardNumber(%q) = %v, want %v", tt.number, got, tt.want)
		}
	}
}

func TestIsValidCardNumberIsDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		if !IsValidCardNumber("4532015112830366") {
			t.Fatal("valid number rejected on repeated call")
		}
		if IsValidCardNumber("4532015112830367") {
			t.Fatal("invalid number accepted on repeated call")
		}
	}
}

func TestCheckDigitCompletesNumber(t *testing.T) {
	prefixes := []string{"400000000000000", "400000397219650", "400000123456789", "123456789012345"}
	for _, prefix := range prefixes {
		number := prefix + strconv.Itoa(CheckDigit(prefix))
		if !IsValidCardNumber(number) {
			t.Errorf("CheckDigit(%s) produced invalid number %s", prefix, number)
		}
	}
}

// Замена любой одной цифры корректного номера всегда ломает контрольную сумму.
func TestSingleDigitChangeIsDetected(t *testing.T) {
	valid := "4000003972196501"
	for pos := 0; pos < len(valid)-1; pos++ {
		for d := byte('0'); d <= '9'; d++ {
			if d == valid[pos] {
				continue
			}
			mutated := []byte(valid)
			mutated[pos] = d
			if IsValidCardNumber(string(mutated)) {
				t.Errorf("mutation at %d to %c still valid: %s", pos, d, mutated)
			}
		}
	}
}
