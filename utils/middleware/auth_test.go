package middleware

import (
	"testing"

	"github.com/finassist/finchat-api/model"
)

func TestMustResetBlocked(t *testing.T) {
	cases := []struct {
		name      string
		mustReset bool
		path      string
		blocked   bool
	}{
		{"pending reset blocks chat", true, "/api/v1/chat", true},
		{"pending reset blocks profile", true, "/api/v1/auth/me", true},
		{"pending reset blocks documents", true, "/api/v1/documents/upload", true},
		{"pending reset blocks admin", true, "/api/v1/admin/users", true},
		{"pending reset allows password change", true, passwordChangePath, false},
		{"no pending reset allows chat", false, "/api/v1/chat", false},
		{"no pending reset allows password change", false, passwordChangePath, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := &model.User{MustReset: tc.mustReset}
			if got := mustResetBlocked(user, tc.path); got != tc.blocked {
				t.Fatalf("mustResetBlocked(%v, %q) = %v, want %v", tc.mustReset, tc.path, got, tc.blocked)
			}
		})
	}
}
