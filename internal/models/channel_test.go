package models

import (
	"testing"
)

func TestChannel_CanUserAccess_Public(t *testing.T) {
	ch := &Channel{IsPrivate: false}

	if !ch.CanUserAccess(1, RoleGuest) {
		t.Error("public channel should admit any member")
	}
	if !ch.CanUserAccess(99, "") {
		t.Error("public channel should admit members even with no resolved role")
	}
}

// The two allow-lists are disjuncts: either one alone grants access.
func TestChannel_CanUserAccess_Private(t *testing.T) {
	tests := []struct {
		name     string
		channel  Channel
		userID   uint
		role     string
		expected bool
	}{
		{
			name:     "on user list, role not allowed",
			channel:  Channel{IsPrivate: true, AllowedUserIDs: "1,2,3", AllowedRoles: "ADMIN"},
			userID:   2,
			role:     RoleGuest,
			expected: true,
		},
		{
			name:     "role allowed, not on user list",
			channel:  Channel{IsPrivate: true, AllowedUserIDs: "1,2,3", AllowedRoles: "ADMIN"},
			userID:   99,
			role:     RoleAdmin,
			expected: true,
		},
		{
			name:     "neither list matches",
			channel:  Channel{IsPrivate: true, AllowedUserIDs: "1,2,3", AllowedRoles: "ADMIN"},
			userID:   99,
			role:     RoleMember,
			expected: false,
		},
		{
			name:     "both lists empty",
			channel:  Channel{IsPrivate: true},
			userID:   1,
			role:     RoleOwner,
			expected: false,
		},
		{
			name:     "empty role with empty role list",
			channel:  Channel{IsPrivate: true, AllowedUserIDs: "5"},
			userID:   6,
			role:     "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.channel.CanUserAccess(tt.userID, tt.role); got != tt.expected {
				t.Errorf("CanUserAccess(%d, %q) = %v, expected %v",
					tt.userID, tt.role, got, tt.expected)
			}
		})
	}
}

func TestChannel_AllowedUserIDList(t *testing.T) {
	tests := []struct {
		stored   string
		expected []uint
	}{
		{"", nil},
		{"1", []uint{1}},
		{"1,2,3", []uint{1, 2, 3}},
		{" 1 , 2 ", []uint{1, 2}},
		{"1,,3", []uint{1, 3}},
		{"1,abc,3", []uint{1, 3}},
	}

	for _, tt := range tests {
		ch := &Channel{AllowedUserIDs: tt.stored}
		got := ch.AllowedUserIDList()
		if len(got) != len(tt.expected) {
			t.Errorf("AllowedUserIDList(%q) = %v, expected %v", tt.stored, got, tt.expected)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("AllowedUserIDList(%q)[%d] = %d, expected %d",
					tt.stored, i, got[i], tt.expected[i])
			}
		}
	}
}

func TestJoinUserIDs_RoundTrip(t *testing.T) {
	ids := []uint{10, 20, 30}
	ch := &Channel{AllowedUserIDs: JoinUserIDs(ids)}

	got := ch.AllowedUserIDList()
	if len(got) != len(ids) {
		t.Fatalf("round trip lost entries: %v", got)
	}
	for i := range ids {
		if got[i] != ids[i] {
			t.Errorf("round trip[%d] = %d, expected %d", i, got[i], ids[i])
		}
	}
}
