package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/models"
	"github.com/huddlehq/huddle/backend/pkg/logger"
)

// mutateRetries bounds the optimistic-lock retry loop for member mutations.
const mutateRetries = 3

// MembershipService owns the workspace member list. All mutations go
// through mutate, which serializes concurrent writers on the workspace
// revision counter.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// mutate loads the workspace, runs fn inside a transaction, and commits
// only if the workspace revision is unchanged since the load. On a lost
// race it retries with a fresh snapshot, up to mutateRetries times.
func (s *MembershipService) mutate(workspaceID uint, fn func(tx *gorm.DB, ws *models.Workspace) error) error {
	var lastErr error
	for attempt := 0; attempt < mutateRetries; attempt++ {
		var ws models.Workspace
		if err := s.db.Preload("Members").First(&ws, workspaceID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrWorkspaceNotFound
			}
			return err
		}
		loadedRevision := ws.Revision

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := fn(tx, &ws); err != nil {
				return err
			}
			// Compare-and-swap on the revision counter. Zero rows
			// affected means another writer got there first.
			res := tx.Model(&models.Workspace{}).
				Where("id = ? AND revision = ?", workspaceID, loadedRevision).
				Update("revision", loadedRevision+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrConcurrentModification
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if err != ErrConcurrentModification {
			return err
		}
		lastErr = err
		logger.Debug().Uint("workspace_id", workspaceID).Int("attempt", attempt+1).
			Msg("Membership mutation lost revision race, retrying")
	}
	return lastErr
}

// AddMember inserts a membership row. Duplicates are rejected here and
// again by the composite unique index on (workspace_id, user_id).
func (s *MembershipService) AddMember(workspaceID, userID uint, role, status string, invitedBy *uint) error {
	if !models.ValidMemberRole(role) {
		return ErrInvalidRole
	}
	if role == models.RoleOwner {
		return ErrCannotModifyOwnerRole
	}
	return s.mutate(workspaceID, func(tx *gorm.DB, ws *models.Workspace) error {
		for _, m := range ws.Members {
			if m.UserID == userID {
				return ErrDuplicateMember
			}
		}
		member := models.WorkspaceMember{
			WorkspaceID: workspaceID,
			UserID:      userID,
			Role:        role,
			Status:      status,
			JoinedAt:    time.Now(),
			InvitedBy:   invitedBy,
		}
		return tx.Create(&member).Error
	})
}

// PromoteMember flips a PENDING membership to ACTIVE, stamping JoinedAt.
func (s *MembershipService) PromoteMember(workspaceID, userID uint) error {
	return s.mutate(workspaceID, func(tx *gorm.DB, ws *models.Workspace) error {
		var found *models.WorkspaceMember
		for i := range ws.Members {
			if ws.Members[i].UserID == userID {
				found = &ws.Members[i]
				break
			}
		}
		if found == nil {
			return ErrNotMember
		}
		if found.Status != models.MemberStatusPending {
			return ErrMembershipNotPending
		}
		return tx.Model(&models.WorkspaceMember{}).
			Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
			Updates(map[string]interface{}{
				"status":    models.MemberStatusActive,
				"joined_at": time.Now(),
			}).Error
	})
}

// RemoveMember removes another user from the workspace. The owner can
// never be removed, even by themselves; everyone else must use Leave
// for self-removal.
func (s *MembershipService) RemoveMember(workspaceID, actorID, targetID uint) error {
	return s.mutate(workspaceID, func(tx *gorm.DB, ws *models.Workspace) error {
		if ws.OwnerID == targetID {
			return ErrCannotRemoveOwner
		}
		if actorID == targetID {
			return ErrCannotRemoveSelf
		}
		if !ws.HasPermission(actorID, models.RoleAdmin) {
			return ErrInsufficientRole
		}
		res := tx.Where("workspace_id = ? AND user_id = ?", workspaceID, targetID).
			Delete(&models.WorkspaceMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotMember
		}
		return nil
	})
}

// Leave removes the calling user's own membership. Owners are bound to
// their workspaces and cannot leave.
func (s *MembershipService) Leave(workspaceID, userID uint) error {
	return s.mutate(workspaceID, func(tx *gorm.DB, ws *models.Workspace) error {
		if ws.OwnerID == userID {
			return ErrOwnerCannotLeave
		}
		res := tx.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
			Delete(&models.WorkspaceMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotMember
		}
		return nil
	})
}

// SetRole changes a member's role. The owner's role is immutable and
// OWNER can never be granted to anyone else.
func (s *MembershipService) SetRole(workspaceID, actorID, targetID uint, role string) error {
	if !models.ValidMemberRole(role) {
		return ErrInvalidRole
	}
	if role == models.RoleOwner {
		return ErrCannotModifyOwnerRole
	}
	return s.mutate(workspaceID, func(tx *gorm.DB, ws *models.Workspace) error {
		if ws.OwnerID == targetID {
			return ErrCannotModifyOwnerRole
		}
		if !ws.HasPermission(actorID, models.RoleAdmin) {
			return ErrInsufficientRole
		}
		res := tx.Model(&models.WorkspaceMember{}).
			Where("workspace_id = ? AND user_id = ?", workspaceID, targetID).
			Update("role", role)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotMember
		}
		return nil
	})
}

// RoleOf returns the member's role, or "" when the user has no active
// membership. An empty legacy status counts as active.
func (s *MembershipService) RoleOf(workspaceID, userID uint) (string, error) {
	var member models.WorkspaceMember
	err := s.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	if !member.IsActive() {
		return "", nil
	}
	return member.Role, nil
}

// IsActiveMember reports whether the user holds an active membership.
func (s *MembershipService) IsActiveMember(workspaceID, userID uint) (bool, error) {
	role, err := s.RoleOf(workspaceID, userID)
	if err != nil {
		return false, err
	}
	return role != "", nil
}

// RequireRole returns the member's role if it satisfies the minimum,
// ErrNotMember when there is no active membership, and
// ErrInsufficientRole otherwise.
func (s *MembershipService) RequireRole(workspaceID, userID uint, required string) (string, error) {
	role, err := s.RoleOf(workspaceID, userID)
	if err != nil {
		return "", err
	}
	if role == "" {
		return "", ErrNotMember
	}
	if !models.HasRolePermission(role, required) {
		return "", ErrInsufficientRole
	}
	return role, nil
}

// CheckMembership returns the membership row for the pair, pending
// included, or ErrNotMember. Pending rows are visible here so a roster
// can show invited users before they accept; they still grant nothing.
func (s *MembershipService) CheckMembership(workspaceID, userID uint) (*models.WorkspaceMember, error) {
	var member models.WorkspaceMember
	err := s.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotMember
		}
		return nil, err
	}
	return &member, nil
}

// ListMembers returns every membership row for the workspace, active
// and pending alike, with the user preloaded for display.
func (s *MembershipService) ListMembers(workspaceID uint) ([]models.WorkspaceMember, error) {
	var members []models.WorkspaceMember
	err := s.db.Preload("User").
		Where("workspace_id = ?", workspaceID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}
