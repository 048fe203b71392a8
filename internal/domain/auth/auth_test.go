package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	claims := Claims{
		UserID:   "user-1",
		TenantID: "tenant-1",
		RoleID:   "role-1",
		RoleName: RoleAdmin,
	}

	token, err := GenerateToken("test-secret", claims, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.UserID != "user-1" || parsed.TenantID != "tenant-1" || parsed.RoleName != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", parsed)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", Claims{UserID: "user-1"}, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ParseToken("secret-b", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckPassword(hash, "correct horse"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword(hash, "wrong horse"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestRolePermissionsAreKnown(t *testing.T) {
	known := make(map[string]bool, len(DefaultPermissions))
	for _, perm := range DefaultPermissions {
		known[perm] = true
	}
	for role, perms := range RolePermissions {
		for _, perm := range perms {
			if !known[perm] {
				t.Fatalf("role %s references unknown permission %s", role, perm)
			}
		}
	}
}
