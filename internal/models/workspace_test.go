package models

import (
	"testing"
	"time"
)

func TestInvite_IsValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		invite   Invite
		expected bool
	}{
		{
			name:     "pending and unexpired",
			invite:   Invite{Status: InviteStatusPending, ExpiresAt: now.Add(time.Hour)},
			expected: true,
		},
		{
			name:     "pending but expired",
			invite:   Invite{Status: InviteStatusPending, ExpiresAt: now.Add(-time.Hour)},
			expected: false,
		},
		{
			name:     "accepted and unexpired",
			invite:   Invite{Status: InviteStatusAccepted, ExpiresAt: now.Add(time.Hour)},
			expected: false,
		},
		{
			name:     "declined",
			invite:   Invite{Status: InviteStatusDeclined, ExpiresAt: now.Add(time.Hour)},
			expected: false,
		},
		{
			name:     "expires exactly now",
			invite:   Invite{Status: InviteStatusPending, ExpiresAt: now},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.invite.IsValid(now); got != tt.expected {
				t.Errorf("IsValid() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestWorkspace_IsMember(t *testing.T) {
	ws := &Workspace{
		Members: []WorkspaceMember{
			{UserID: 1, Role: RoleOwner, Status: MemberStatusActive},
			{UserID: 2, Role: RoleMember, Status: MemberStatusPending},
			{UserID: 3, Role: RoleMember, Status: ""}, // legacy row
		},
	}

	tests := []struct {
		userID   uint
		expected bool
	}{
		{1, true},
		{2, false}, // pending does not count
		{3, true},  // missing status means active
		{4, false},
	}

	for _, tt := range tests {
		if got := ws.IsMember(tt.userID); got != tt.expected {
			t.Errorf("IsMember(%d) = %v, expected %v", tt.userID, got, tt.expected)
		}
	}
}

func TestWorkspace_HasPermission(t *testing.T) {
	ws := &Workspace{
		OwnerID: 1,
		Members: []WorkspaceMember{
			{UserID: 1, Role: RoleOwner, Status: MemberStatusActive},
			{UserID: 2, Role: RoleAdmin, Status: MemberStatusActive},
			{UserID: 3, Role: RoleGuest, Status: MemberStatusActive},
		},
	}

	if !ws.HasPermission(1, RoleOwner) {
		t.Error("owner should satisfy OWNER")
	}
	if !ws.HasPermission(2, RoleMember) {
		t.Error("admin should satisfy MEMBER")
	}
	if ws.HasPermission(3, RoleMember) {
		t.Error("guest should not satisfy MEMBER")
	}
	if ws.HasPermission(99, RoleGuest) {
		t.Error("non-member should satisfy nothing")
	}
}

func TestWorkspace_MemberRole(t *testing.T) {
	ws := &Workspace{
		Members: []WorkspaceMember{
			{UserID: 1, Role: RoleOwner, Status: MemberStatusActive},
			{UserID: 2, Role: RoleAdmin, Status: MemberStatusPending},
			{UserID: 3, Role: RoleMember, Status: ""}, // legacy row
		},
	}

	tests := []struct {
		userID   uint
		expected string
	}{
		{1, RoleOwner},
		{2, ""}, // pending holds no role yet
		{3, RoleMember},
		{4, ""},
	}

	for _, tt := range tests {
		if got := ws.MemberRole(tt.userID); got != tt.expected {
			t.Errorf("MemberRole(%d) = %q, expected %q", tt.userID, got, tt.expected)
		}
	}
}

// A pending admin grants nothing until the invite is accepted.
func TestWorkspace_HasPermission_PendingMember(t *testing.T) {
	ws := &Workspace{
		OwnerID: 1,
		Members: []WorkspaceMember{
			{UserID: 1, Role: RoleOwner, Status: MemberStatusActive},
			{UserID: 2, Role: RoleAdmin, Status: MemberStatusPending},
		},
	}

	if ws.HasPermission(2, RoleGuest) {
		t.Error("pending admin should satisfy nothing")
	}
}

func TestWorkspace_MemberCount(t *testing.T) {
	ws := &Workspace{
		Members: []WorkspaceMember{
			{UserID: 1, Status: MemberStatusActive},
			{UserID: 2, Status: MemberStatusPending},
			{UserID: 3, Status: ""},
		},
	}

	if got := ws.MemberCount(); got != 2 {
		t.Errorf("MemberCount() = %d, expected 2 (pending excluded)", got)
	}
}

func TestWorkspaceMember_IsActive(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{MemberStatusActive, true},
		{"", true},
		{MemberStatusPending, false},
	}

	for _, tt := range tests {
		m := &WorkspaceMember{Status: tt.status}
		if got := m.IsActive(); got != tt.expected {
			t.Errorf("IsActive() with status %q = %v, expected %v", tt.status, got, tt.expected)
		}
	}
}
