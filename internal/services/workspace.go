package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/models"
	"github.com/huddlehq/huddle/backend/pkg/logger"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// WorkspaceService manages workspace lifecycle and settings.
type WorkspaceService struct {
	db *gorm.DB
}

func NewWorkspaceService(db *gorm.DB) *WorkspaceService {
	return &WorkspaceService{db: db}
}

// Slugify lowercases the name and collapses non-alphanumeric runs to
// single hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug appends an incrementing counter until the slug is free.
func (s *WorkspaceService) uniqueSlug(tx *gorm.DB, base string) (string, error) {
	if base == "" {
		base = "workspace"
	}
	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.Workspace{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// CreateWorkspaceInput carries the fields a user supplies at creation.
type CreateWorkspaceInput struct {
	Name        string
	Description string
}

// Create provisions a workspace: the row itself, the owner's ACTIVE
// OWNER membership, and the reserved general channel, all in one
// transaction so a half-created workspace can never be observed.
func (s *WorkspaceService) Create(ownerID uint, input CreateWorkspaceInput) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Transaction(func(tx *gorm.DB) error {
		slug, err := s.uniqueSlug(tx, Slugify(input.Name))
		if err != nil {
			return err
		}
		ws = models.Workspace{
			Name:               input.Name,
			Slug:               slug,
			Description:        input.Description,
			OwnerID:            ownerID,
			AllowInvites:       true,
			AllowMemberInvites: false,
			DefaultChannelName: models.GeneralChannelName,
			IsActive:           true,
		}
		if err := tx.Create(&ws).Error; err != nil {
			return err
		}

		owner := models.WorkspaceMember{
			WorkspaceID: ws.ID,
			UserID:      ownerID,
			Role:        models.RoleOwner,
			Status:      models.MemberStatusActive,
			JoinedAt:    time.Now(),
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		general := models.Channel{
			WorkspaceID: ws.ID,
			Name:        models.GeneralChannelName,
			Description: "Workspace-wide discussion",
			Type:        models.ChannelTypeText,
			IsPrivate:   false,
			CreatedBy:   ownerID,
			IsActive:    true,
		}
		return tx.Create(&general).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Uint("workspace_id", ws.ID).Uint("owner_id", ownerID).
		Str("slug", ws.Slug).Msg("Workspace created")
	return &ws, nil
}

// Get loads an active workspace with its members.
func (s *WorkspaceService) Get(workspaceID uint) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Preload("Members").Preload("Members.User").Preload("Owner").
		Where("id = ? AND is_active = ?", workspaceID, true).
		First(&ws).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// GetBySlug loads an active workspace by its slug.
func (s *WorkspaceService) GetBySlug(slug string) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.db.Preload("Members").Preload("Members.User").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&ws).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// ListForUser returns the active workspaces where the user holds an
// active membership.
func (s *WorkspaceService) ListForUser(userID uint) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := s.db.
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Where("workspace_members.status = ? OR workspace_members.status = ''", models.MemberStatusActive).
		Where("workspaces.is_active = ?", true).
		Order("workspaces.created_at ASC").
		Find(&workspaces).Error
	return workspaces, err
}

// UpdateWorkspaceInput carries optional settings updates. Nil fields
// are left untouched.
type UpdateWorkspaceInput struct {
	Name               *string
	Description        *string
	AllowInvites       *bool
	AllowMemberInvites *bool
}

// Update applies workspace settings. Only ADMIN or better may change
// them; the slug is immutable after creation.
func (s *WorkspaceService) Update(workspaceID, actorID uint, input UpdateWorkspaceInput) (*models.Workspace, error) {
	ws, err := s.Get(workspaceID)
	if err != nil {
		return nil, err
	}
	if !ws.HasPermission(actorID, models.RoleAdmin) {
		return nil, ErrInsufficientRole
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.AllowInvites != nil {
		updates["allow_invites"] = *input.AllowInvites
	}
	if input.AllowMemberInvites != nil {
		updates["allow_member_invites"] = *input.AllowMemberInvites
	}
	if len(updates) == 0 {
		return ws, nil
	}
	if err := s.db.Model(ws).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(workspaceID)
}

// Deactivate marks a workspace inactive. Only the owner may do this;
// the data stays in place and can be restored administratively.
func (s *WorkspaceService) Deactivate(workspaceID, actorID uint) error {
	ws, err := s.Get(workspaceID)
	if err != nil {
		return err
	}
	if ws.OwnerID != actorID {
		return ErrInsufficientRole
	}
	err = s.db.Model(ws).Update("is_active", false).Error
	if err == nil {
		logger.Info().Uint("workspace_id", workspaceID).Msg("Workspace deactivated")
	}
	return err
}
