package services

import (
	"testing"
	"time"
)

func TestLoginLimiter(t *testing.T) {
	l := NewLoginLimiter(time.Hour, 2)

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("burst attempts should pass")
	}
	if l.Allow("a") {
		t.Fatalf("third attempt should be throttled")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must be throttled independently")
	}

	l.Reset("a")
	if !l.Allow("a") {
		t.Fatalf("reset key should be allowed again")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Fire$afe2026", true},
		{"short1!", false},
		{"alllowercase1!", false},
		{"ALLUPPERCASE1!", false},
		{"NoDigits!!", false},
		{"NoSpecial123", false},
	}
	for _, tt := range tests {
		if got := ValidatePassword(tt.password) == ""; got != tt.ok {
			t.Errorf("ValidatePassword(%q) ok = %v, want %v", tt.password, got, tt.ok)
		}
	}
}
