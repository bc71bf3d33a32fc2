package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/huddlehq/huddle/backend/internal/models"
	"github.com/huddlehq/huddle/backend/internal/utils"
)

var testDBSeq int64

// newTestDB opens a fresh in-memory database per test. cache=shared
// keeps the database alive across the connections in gorm's pool.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := models.MigrateAll(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Email: email, FullName: "Test User", Password: hash}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

// createTestWorkspace provisions a workspace through the service so the
// owner membership and general channel exist, as in production.
func createTestWorkspace(t *testing.T, db *gorm.DB, ownerID uint, name string) *models.Workspace {
	t.Helper()
	ws, err := NewWorkspaceService(db).Create(ownerID, CreateWorkspaceInput{Name: name})
	if err != nil {
		t.Fatalf("create workspace %s: %v", name, err)
	}
	return ws
}

func addTestMember(t *testing.T, db *gorm.DB, workspaceID, userID uint, role, status string) {
	t.Helper()
	member := models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		Status:      status,
		JoinedAt:    time.Now(),
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("add member %d to workspace %d: %v", userID, workspaceID, err)
	}
}

// assertOwnerInvariant checks that the workspace owner always holds an
// ACTIVE OWNER membership. Called after mutations in membership tests.
func assertOwnerInvariant(t *testing.T, db *gorm.DB, workspaceID uint) {
	t.Helper()
	var ws models.Workspace
	if err := db.Preload("Members").First(&ws, workspaceID).Error; err != nil {
		t.Fatalf("load workspace: %v", err)
	}
	for _, m := range ws.Members {
		if m.UserID == ws.OwnerID {
			if m.Role != models.RoleOwner {
				t.Errorf("owner role = %q, expected OWNER", m.Role)
			}
			if !m.IsActive() {
				t.Errorf("owner status = %q, expected ACTIVE", m.Status)
			}
			return
		}
	}
	t.Error("owner has no membership row")
}
