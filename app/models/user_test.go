package models

import "testing"

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("testuser", "test@example.com", "secret123")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != ROLE_USER || u.Status != STATUS_ACTIVE {
		t.Errorf("unexpected defaults: role=%s status=%s", u.Role, u.Status)
	}
	if u.Password == "secret123" {
		t.Error("password must be stored hashed")
	}
	if !CheckPasswordHash("secret123", u.Password) {
		t.Error("stored hash does not verify against the original password")
	}
	if CheckPasswordHash("wrong", u.Password) {
		t.Error("wrong password must not verify")
	}
}

func TestCreateUserValidation(t *testing.T) {
	if _, err := CreateUser("ab", "test@example.com", "secret123"); err == nil {
		t.Error("short name must fail validation")
	}
	if _, err := CreateUser("testuser", "not-an-email", "secret123"); err == nil {
		t.Error("invalid email must fail validation")
	}
}
