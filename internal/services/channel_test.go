package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/models"
)

func newChannelService(db *gorm.DB) *ChannelService {
	return NewChannelService(db, NewMembershipService(db))
}

func TestChannel_Create(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	ws := createTestWorkspace(t, db, owner.ID, "Acme")

	svc := newChannelService(db)
	ch, err := svc.Create(ws.ID, owner.ID, CreateChannelInput{Name: "Dev-Chat"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ch.Name != "dev-chat" {
		t.Errorf("name = %q, expected case-folded %q", ch.Name, "dev-chat")
	}
}

func TestChannel_Create_GeneralReserved(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	ws := createTestWorkspace(t, db, owner.ID, "Acme")

	for _, name := range []string{"general", "General", " GENERAL "} {
		_, err := newChannelService(db).Create(ws.ID, owner.ID, CreateChannelInput{Name: name})
		if !errors.Is(err, ErrDuplicateChannelName) {
			t.Errorf("Create(%q) error = %v, expected ErrDuplicateChannelName", name, err)
		}
	}
}

func TestChannel_Create_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	ws := createTestWorkspace(t, db, owner.ID, "Acme")

	svc := newChannelService(db)
	if _, err := svc.Create(ws.ID, owner.ID, CreateChannelInput{Name: "dev"}); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	if _, err := svc.Create(ws.ID, owner.ID, CreateChannelInput{Name: "DEV"}); !errors.Is(err, ErrDuplicateChannelName) {
		t.Errorf("duplicate Create() error = %v, expected ErrDuplicateChannelName", err)
	}

	// Deleting frees the name
	var ch models.Channel
	db.Where("workspace_id = ? AND name = ?", ws.ID, "dev").First(&ch)
	if err := svc.Delete(ch.ID, owner.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Create(ws.ID, owner.ID, CreateChannelInput{Name: "dev"}); err != nil {
		t.Errorf("Create() after delete error = %v", err)
	}
}

func TestChannel_Create_RequiresAdmin(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	member := createTestUser(t, db, "member@example.com")
	ws := createTestWorkspace(t, db, owner.ID, "Acme")
	addTestMember(t, db, ws.ID, member.ID, models.RoleMember, models.MemberStatusActive)

	_, err := newChannelService(db).Create(ws.ID, member.ID, CreateChannelInput{Name: "dev"})
	if !errors.Is(err, ErrInsufficientRole) {
		t.Errorf("member Create() error = %v, expected ErrInsufficientRole", err)
	}
}

func TestChannel_Delete_GeneralProtected(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	ws := createTestWorkspace(t, db, owner.ID, "Acme")

	var general models.Channel
	if err := db.Where("workspace_id = ? AND name = ?", ws.ID, models.GeneralChannelName).First(&general).Error; err != nil {
		t.Fatalf("general channel missing after workspace creation: %v", err)
	}

	err := newChannelService(db).Delete(general.ID, owner.ID)
	if !errors.Is(err, ErrCannotDeleteGeneral) {
		t.Errorf("Delete(general) error = %v, expected ErrCannotDeleteGeneral", err)
	}
}

func TestChannel_ListForWorkspace_FiltersPrivate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	member := createTestUser(t, db, "member@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	ws := createTestWorkspace(t, db, owner.ID, "Acme")
	addTestMember(t, db, ws.ID, member.ID, models.RoleMember, models.MemberStatusActive)
	addTestMember(t, db, ws.ID, admin.ID, models.RoleAdmin, models.MemberStatusActive)

	svc := newChannelService(db)
	svc.Create(ws.ID, owner.ID, CreateChannelInput{
		Name:         "admins-only",
		IsPrivate:    true,
		AllowedRoles: []string{models.RoleAdmin},
	})

	visible, err := svc.ListForWorkspace(ws.ID, member.ID)
	if err != nil {
		t.Fatalf("ListForWorkspace() error = %v", err)
	}
	for _, ch := range visible {
		if ch.Name == "admins-only" {
			t.Error("member should not see the private channel")
		}
	}

	visible, _ = svc.ListForWorkspace(ws.ID, admin.ID)
	found := false
	for _, ch := range visible {
		if ch.Name == "admins-only" {
			found = true
		}
	}
	if !found {
		t.Error("admin should see the private channel via role allow-list")
	}
}

func TestChannel_CanAccess_ORSemantics(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	guest := createTestUser(t, db, "guest@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	outsider := createTestUser(t, db, "outsider@example.com")
	ws := createTestWorkspace(t, db, owner.ID, "Acme")
	addTestMember(t, db, ws.ID, guest.ID, models.RoleGuest, models.MemberStatusActive)
	addTestMember(t, db, ws.ID, admin.ID, models.RoleAdmin, models.MemberStatusActive)

	svc := newChannelService(db)
	ch, err := svc.Create(ws.ID, owner.ID, CreateChannelInput{
		Name:           "secret",
		IsPrivate:      true,
		AllowedUserIDs: []uint{guest.ID},
		AllowedRoles:   []string{models.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name     string
		userID   uint
		expected bool
	}{
		{"guest on user allow-list", guest.ID, true},
		{"admin via role allow-list", admin.ID, true},
		{"owner not on either list", owner.ID, false},
		{"non-member", outsider.ID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CanAccess(ch.ID, tt.userID)
			if err != nil {
				t.Fatalf("CanAccess() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("CanAccess() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestChannel_Messages(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	member := createTestUser(t, db, "member@example.com")
	ws := createTestWorkspace(t, db, owner.ID, "Acme")
	addTestMember(t, db, ws.ID, member.ID, models.RoleMember, models.MemberStatusActive)

	var general models.Channel
	db.Where("workspace_id = ? AND name = ?", ws.ID, models.GeneralChannelName).First(&general)

	svc := newChannelService(db)
	for i := 0; i < 3; i++ {
		if _, err := svc.SendMessage(general.ID, member.ID, "hello", ""); err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
	}

	messages, err := svc.ListMessages(general.ID, owner.ID, 0, 2)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, expected limit 2", len(messages))
	}
	if messages[0].ID < messages[1].ID {
		t.Error("messages should be newest first")
	}

	// Cursor continues past the first page
	next, _ := svc.ListMessages(general.ID, owner.ID, messages[1].ID, 10)
	if len(next) != 1 {
		t.Errorf("next page = %d messages, expected 1", len(next))
	}
}

func TestChannel_SendMessage_GateDenied(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	member := createTestUser(t, db, "member@example.com")
	ws := createTestWorkspace(t, db, owner.ID, "Acme")
	addTestMember(t, db, ws.ID, member.ID, models.RoleMember, models.MemberStatusActive)

	svc := newChannelService(db)
	ch, _ := svc.Create(ws.ID, owner.ID, CreateChannelInput{
		Name:         "locked",
		IsPrivate:    true,
		AllowedRoles: []string{models.RoleAdmin},
	})

	_, err := svc.SendMessage(ch.ID, member.ID, "hi", "")
	if !errors.Is(err, ErrChannelAccessDenied) {
		t.Errorf("SendMessage() error = %v, expected ErrChannelAccessDenied", err)
	}
}
