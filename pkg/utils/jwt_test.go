package utils

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateToken("user-1", []string{"legal", "director"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "legal" {
		t.Errorf("Roles = %v", claims.Roles)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	SetSecret("test-secret")

	token, err := GenerateToken("user-1", nil, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	SetSecret("one")
	token, _ := GenerateToken("user-1", nil, time.Hour)

	SetSecret("two")
	if _, err := ValidateToken(token); err == nil {
		t.Error("expected signature mismatch")
	}
}
