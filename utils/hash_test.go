package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	// Minimum cost keeps the test fast.
	hash, err := HashPassword("correct horse battery staple", 4)
	if err != nil {
		t.Fatal(err)
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("correct password should verify")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	if _, err := HashPassword("password123", -1); err != nil {
		t.Errorf("out-of-range cost should be clamped, got error: %v", err)
	}
}
