package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPasswordHash("s3cret-pass", hash) {
		t.Fatalf("correct password rejected")
	}
	if CheckPasswordHash("wrong-pass", hash) {
		t.Fatalf("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("Asha", "asha@example.com", "", "admin", "CSE", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	email, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if email != "asha@example.com" {
		t.Fatalf("email = %q", email)
	}
}

func TestExpiredJWTRejected(t *testing.T) {
	token, err := GenerateJWT("Asha", "asha@example.com", "", "admin", "CSE", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ValidateJWT(token); err == nil {
		t.Fatalf("expired token accepted")
	}
}
