package services

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/models"
)

func newAccountService(db *gorm.DB) *AccountService {
	return NewAccountService(db, nil, nil)
}

func TestAccount_SoftDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "user@example.com")

	svc := newAccountService(db)
	if err := svc.SoftDelete(user.ID, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("SoftDelete(wrong password) error = %v, expected ErrInvalidCredentials", err)
	}

	if err := svc.SoftDelete(user.ID, "password123"); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	var reloaded models.User
	db.First(&reloaded, user.ID)
	if reloaded.DeletedAt == nil {
		t.Fatal("deletedAt not stamped")
	}
	first := *reloaded.DeletedAt

	// Idempotent: a second call leaves the stamp alone
	if err := svc.SoftDelete(user.ID, "password123"); err != nil {
		t.Fatalf("second SoftDelete() error = %v", err)
	}
	db.First(&reloaded, user.ID)
	if !reloaded.DeletedAt.Equal(first) {
		t.Error("second soft delete moved the deletedAt stamp")
	}

	// Login refused while deleted
	if _, err := NewAuthService(db).Login(user.Email, "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login of deleted account error = %v, expected ErrInvalidCredentials", err)
	}
}

func TestAccount_RecoveryFlow(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "user@example.com")

	svc := newAccountService(db)
	svc.SoftDelete(user.ID, "password123")

	token, err := svc.RequestRecovery(user.Email)
	if err != nil {
		t.Fatalf("RequestRecovery() error = %v", err)
	}
	if token == "" {
		t.Fatal("no token issued for deleted account")
	}

	// A second request inside the hour is rate limited
	if _, err := svc.RequestRecovery(user.Email); !errors.Is(err, ErrRecoveryRateLimited) {
		t.Errorf("second RequestRecovery() error = %v, expected ErrRecoveryRateLimited", err)
	}

	if err := svc.ValidateRecoveryToken(token); err != nil {
		t.Errorf("ValidateRecoveryToken() error = %v", err)
	}

	recovered, err := svc.Recover(token)
	if err != nil {
		t.Fatalf("Recover() error = %v", err)
	}
	if recovered.DeletedAt != nil {
		t.Error("deletedAt not cleared on recovery")
	}

	// Login works again
	if _, err := NewAuthService(db).Login(user.Email, "password123"); err != nil {
		t.Errorf("Login after recovery error = %v", err)
	}

	// The token is single-use
	if err := svc.ValidateRecoveryToken(token); !errors.Is(err, ErrInvalidRecoveryToken) {
		t.Errorf("reused token error = %v, expected ErrInvalidRecoveryToken", err)
	}
}

func TestAccount_RecoveryNeutralForUnknownOrLive(t *testing.T) {
	db := newTestDB(t)
	live := createTestUser(t, db, "live@example.com")

	svc := newAccountService(db)

	token, err := svc.RequestRecovery("nobody@example.com")
	if err != nil || token != "" {
		t.Errorf("unknown email: token = %q, err = %v, expected neutral empty result", token, err)
	}

	token, err = svc.RequestRecovery(live.Email)
	if err != nil || token != "" {
		t.Errorf("live account: token = %q, err = %v, expected neutral empty result", token, err)
	}
}

func TestAccount_RecoveryTokenExpiry(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "user@example.com")

	svc := newAccountService(db)
	svc.SoftDelete(user.ID, "password123")
	token, _ := svc.RequestRecovery(user.Email)

	expired := time.Now().Add(-time.Minute)
	db.Model(&models.User{}).Where("id = ?", user.ID).Update("recovery_token_expires", expired)

	if _, err := svc.Recover(token); !errors.Is(err, ErrInvalidRecoveryToken) {
		t.Errorf("Recover(expired token) error = %v, expected ErrInvalidRecoveryToken", err)
	}
}

func TestAccount_HardDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	u := createTestUser(t, db, "u@example.com")
	v := createTestUser(t, db, "v@example.com")
	ws := createTestWorkspace(t, db, v.ID, "Acme")
	addTestMember(t, db, ws.ID, u.ID, models.RoleMember, models.MemberStatusActive)

	channels := newChannelService(db)
	var general models.Channel
	db.Where("workspace_id = ? AND name = ?", ws.ID, models.GeneralChannelName).First(&general)

	// U authored a DM to V, V authored one back, and U posted in a channel
	sent, _ := channels.SendDirectMessage(u.ID, v.ID, "from u", "")
	received, _ := channels.SendDirectMessage(v.ID, u.ID, "from v", "")
	posted, _ := channels.SendMessage(general.ID, u.ID, "channel post", "")

	// U owns a workspace and is assigned a task
	owned := createTestWorkspace(t, db, u.ID, "U Corp")
	uid := u.ID
	task := models.Task{WorkspaceID: ws.ID, Title: "chore", AssigneeID: &uid, CreatedBy: v.ID}
	db.Create(&task)

	// An outstanding invite issued by U
	inviteSvc := newInviteService(db)
	inviteSvc.IssueByEmails(owned.ID, u.ID, []string{"target@example.com"}, models.RoleMember, "")

	if err := newAccountService(db).HardDelete(u.ID, "password123"); err != nil {
		t.Fatalf("HardDelete() error = %v", err)
	}

	// 1. U's authored DM now belongs to V with the transfer recorded
	var transferred models.Message
	if err := db.First(&transferred, sent.ID).Error; err != nil {
		t.Fatalf("U's authored DM should survive via transfer: %v", err)
	}
	if transferred.SenderID == nil || *transferred.SenderID != v.ID {
		t.Error("transferred message sender should be the receiver")
	}
	if !transferred.OwnershipTransferred {
		t.Error("ownershipTransferred not set")
	}
	if transferred.OriginalSenderID == nil || *transferred.OriginalSenderID != u.ID {
		t.Error("originalSenderId should record U")
	}

	// 2. The DM V sent to U is gone
	var gone models.Message
	if err := db.First(&gone, received.ID).Error; err == nil {
		t.Error("DM addressed to U should be deleted")
	}

	// 3. U is off every roster
	var memberships int64
	db.Model(&models.WorkspaceMember{}).Where("user_id = ?", u.ID).Count(&memberships)
	if memberships != 0 {
		t.Errorf("U still holds %d memberships", memberships)
	}

	// 4. U's owned workspace is deactivated, not deleted
	var inert models.Workspace
	db.First(&inert, owned.ID)
	if inert.IsActive {
		t.Error("owned workspace should be deactivated")
	}

	// 5. Task assignment cleared, channel message anonymized
	var cleared models.Task
	db.First(&cleared, task.ID)
	if cleared.AssigneeID != nil {
		t.Error("task assignee should be cleared")
	}
	var anon models.Message
	db.First(&anon, posted.ID)
	if anon.SenderID != nil || !anon.SenderDeleted {
		t.Error("channel message should be anonymized with senderDeleted set")
	}

	// 6. Invites issued by U are gone
	var invites int64
	db.Model(&models.Invite{}).Where("invited_by = ?", u.ID).Count(&invites)
	if invites != 0 {
		t.Errorf("%d invites issued by U survive", invites)
	}

	// 7. The user row no longer exists
	var rows int64
	db.Model(&models.User{}).Where("id = ?", u.ID).Count(&rows)
	if rows != 0 {
		t.Error("U's user row should be removed")
	}
}

func TestAccount_PurgeExpired(t *testing.T) {
	db := newTestDB(t)
	old := createTestUser(t, db, "old@example.com")
	recent := createTestUser(t, db, "recent@example.com")
	live := createTestUser(t, db, "live@example.com")

	now := time.Now()
	past := now.Add(-31 * 24 * time.Hour)
	within := now.Add(-5 * 24 * time.Hour)
	db.Model(&models.User{}).Where("id = ?", old.ID).Update("deleted_at", past)
	db.Model(&models.User{}).Where("id = ?", recent.ID).Update("deleted_at", within)

	purged, err := newAccountService(db).PurgeExpired(now)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, expected 1", purged)
	}

	var count int64
	db.Model(&models.User{}).Where("id = ?", old.ID).Count(&count)
	if count != 0 {
		t.Error("account past the grace period should be erased")
	}
	db.Model(&models.User{}).Where("id IN ?", []uint{recent.ID, live.ID}).Count(&count)
	if count != 2 {
		t.Error("accounts inside the grace period and live accounts must survive")
	}
}

func TestAccount_PurgeLock(t *testing.T) {
	db := newTestDB(t)

	first := newAccountService(db)
	second := newAccountService(db)

	now := time.Now()
	if !first.acquirePurgeLock(now) {
		t.Fatal("first instance should win the lock")
	}
	if second.acquirePurgeLock(now) {
		t.Error("second instance must not acquire the same period's lock")
	}

	// A new period is a fresh claim
	tomorrow := now.Add(24 * time.Hour)
	if !second.acquirePurgeLock(tomorrow) {
		t.Error("next period's lock should be claimable")
	}
}

func TestAccount_Export(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "user@example.com")
	createTestWorkspace(t, db, user.ID, "Acme")

	data, err := newAccountService(db).Export(user.ID)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("export is empty")
	}
}

func TestAuth_Signup(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db)

	user, err := svc.Signup("New@Example.com", "password123", "New User")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user.Email != "new@example.com" {
		t.Errorf("email = %q, expected case-folded", user.Email)
	}
	if user.Password == "password123" {
		t.Error("password stored in plaintext")
	}

	if _, err := svc.Signup("new@example.com", "password123", "Dup"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate Signup() error = %v, expected ErrEmailExists", err)
	}

	if _, err := svc.Login("new@example.com", "password123"); err != nil {
		t.Errorf("Login() error = %v", err)
	}
	if _, err := svc.Login("new@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong) error = %v, expected ErrInvalidCredentials", err)
	}
}

func TestAuth_ChangePassword(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "user@example.com")

	svc := NewAuthService(db)
	if err := svc.ChangePassword(user.ID, "wrong", "newpassword1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ChangePassword(wrong current) error = %v, expected ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(user.ID, "password123", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, err := svc.Login(user.Email, "newpassword1"); err != nil {
		t.Errorf("Login with new password error = %v", err)
	}
}
