package models

import (
	"testing"

	"github.com/google/uuid"
)

func newUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func TestActor_HasCapability(t *testing.T) {
	tests := []struct {
		name       string
		roles      []ActorRole
		capability Capability
		want       bool
	}{
		{"admin manages matches", []ActorRole{RoleAdmin}, CapabilityManageMatches, true},
		{"organizer manages matches", []ActorRole{RoleOrganizer}, CapabilityManageMatches, true},
		{"player cannot manage matches", []ActorRole{RolePlayer}, CapabilityManageMatches, false},
		{"player posts messages", []ActorRole{RolePlayer}, CapabilityPostMessages, true},
		{"viewer has nothing", []ActorRole{RoleViewer}, CapabilityPostMessages, false},
		{"no roles at all", nil, CapabilityManageComments, false},
		{"unknown role grants nothing", []ActorRole{"superuser"}, CapabilityManageMatches, false},
		{"any matching role is enough", []ActorRole{RoleViewer, RolePlayer}, CapabilityPostMessages, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := Actor{Registration: "20230001", Campus: "CM", Roles: tt.roles}
			if got := actor.HasCapability(tt.capability); got != tt.want {
				t.Errorf("HasCapability(%q) = %v, want %v", tt.capability, got, tt.want)
			}
		})
	}
}
