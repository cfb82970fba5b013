package user

import (
	"testing"

	"github.com/klasemy/course-store/core/claims"
)

func TestResolveRole(t *testing.T) {
	const admin = "admin@store.test"

	tests := []struct {
		name       string
		persisted  string
		email      string
		adminEmail string
		want       string
	}{
		{"persisted wins over admin email", claims.RoleUser, admin, admin, claims.RoleUser},
		{"persisted admin kept", claims.RoleAdmin, "other@store.test", admin, claims.RoleAdmin},
		{"admin email without profile", "", admin, admin, claims.RoleAdmin},
		{"admin email match is case insensitive", "", "Admin@Store.Test", admin, claims.RoleAdmin},
		{"plain user default", "", "other@store.test", admin, claims.RoleUser},
		{"no admin configured", "", admin, "", claims.RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRole(tt.persisted, tt.email, tt.adminEmail); got != tt.want {
				t.Fatalf("ResolveRole(%q, %q, %q) = %q, want %q", tt.persisted, tt.email, tt.adminEmail, got, tt.want)
			}
		})
	}
}
