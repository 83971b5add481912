package auth

import (
	"testing"

	"github.com/userpanel/adminserver/types"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	admin := types.User{
		Username: "root",
		Groups:   []types.Group{{ID: 1, Name: "administrators"}, {ID: 2, Name: "managers"}},
	}
	nobody := types.User{Username: "guest"}

	tests := []struct {
		name     string
		user     types.User
		required string
		want     bool
	}{
		{"member", admin, "administrators", true},
		{"other membership", admin, "managers", true},
		{"non-member", admin, "auditors", false},
		{"case sensitive", admin, "Administrators", false},
		{"empty group set", nobody, "administrators", false},
		{"empty group set, any name", nobody, "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.user, tt.required); got != tt.want {
				t.Fatalf("Authorize(%q, %q) = %v, want %v", tt.user.Username, tt.required, got, tt.want)
			}
		})
	}
}
