package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/models"
	"github.com/huddlehq/huddle/backend/internal/utils"
	"github.com/huddlehq/huddle/backend/pkg/logger"
)

// InviteTTL is how long an invite stays acceptable after issuance.
const InviteTTL = 7 * 24 * time.Hour

// InviteService issues and resolves workspace invites. Expiry is lazy:
// reads treat a stale PENDING invite as invalid without writing the
// EXPIRED status back.
type InviteService struct {
	db         *gorm.DB
	membership *MembershipService
	queue      TaskQueue
	email      *EmailService
}

func NewInviteService(db *gorm.DB, membership *MembershipService, queue TaskQueue, email *EmailService) *InviteService {
	return &InviteService{db: db, membership: membership, queue: queue, email: email}
}

// InviteResult reports the outcome of a bulk issue call.
type InviteResult struct {
	Invited []string `json:"invited"`
	Skipped []string `json:"skipped"`
}

func (s *InviteService) canInvite(ws *models.Workspace, inviterID uint) error {
	if !ws.AllowInvites {
		return ErrInvitesDisabled
	}
	required := models.RoleAdmin
	if ws.AllowMemberInvites {
		required = models.RoleMember
	}
	if !ws.HasPermission(inviterID, required) {
		return ErrInsufficientRole
	}
	return nil
}

// IssueByEmails invites a list of email addresses. Addresses that
// already hold a membership (active or pending) are skipped; the call
// fails with ErrAllAlreadyMembers only when every address was skipped.
// For emails with an existing account a PENDING membership is
// pre-created so the workspace roster shows them immediately.
func (s *InviteService) IssueByEmails(workspaceID, inviterID uint, emails []string, role, customMessage string) (*InviteResult, error) {
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidInviteRole(role) {
		return nil, ErrInvalidRole
	}

	var ws models.Workspace
	if err := s.db.Preload("Members").Where("id = ? AND is_active = ?", workspaceID, true).First(&ws).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	if err := s.canInvite(&ws, inviterID); err != nil {
		return nil, err
	}

	var inviter models.User
	if err := s.db.First(&inviter, inviterID).Error; err != nil {
		return nil, err
	}

	result := &InviteResult{}
	for _, raw := range emails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" {
			continue
		}

		var user models.User
		userErr := s.db.Where("email = ?", email).First(&user).Error
		hasAccount := userErr == nil

		if hasAccount {
			var existing models.WorkspaceMember
			err := s.db.Where("workspace_id = ? AND user_id = ?", workspaceID, user.ID).
				First(&existing).Error
			if err == nil {
				result.Skipped = append(result.Skipped, email)
				continue
			}
			if err != gorm.ErrRecordNotFound {
				return nil, err
			}
		}

		token, err := utils.GenerateSecureToken(32)
		if err != nil {
			return nil, err
		}
		invite := models.Invite{
			Token:         token,
			WorkspaceID:   workspaceID,
			InvitedBy:     inviterID,
			Email:         email,
			Role:          role,
			Status:        models.InviteStatusPending,
			ExpiresAt:     time.Now().Add(InviteTTL),
			CustomMessage: customMessage,
		}
		if err := s.db.Create(&invite).Error; err != nil {
			return nil, err
		}

		if hasAccount {
			if err := s.membership.AddMember(workspaceID, user.ID, role, models.MemberStatusPending, &inviterID); err != nil {
				// Raced with another inviter; the invite itself still stands.
				if err != ErrDuplicateMember {
					return nil, err
				}
			}
		}

		s.notify(invite, inviter.FullName, ws.Name)
		result.Invited = append(result.Invited, email)
	}

	if len(result.Invited) == 0 && len(result.Skipped) > 0 {
		return result, ErrAllAlreadyMembers
	}
	logger.Info().Uint("workspace_id", workspaceID).Int("invited", len(result.Invited)).
		Int("skipped", len(result.Skipped)).Msg("Invites issued")
	return result, nil
}

// IssueByUserIDs invites existing users directly. This path records the
// target user on the invite and does not pre-create a membership row;
// the roster only changes when the user accepts.
func (s *InviteService) IssueByUserIDs(workspaceID, inviterID uint, userIDs []uint, role, customMessage string) (*InviteResult, error) {
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidInviteRole(role) {
		return nil, ErrInvalidRole
	}

	var ws models.Workspace
	if err := s.db.Preload("Members").Where("id = ? AND is_active = ?", workspaceID, true).First(&ws).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	if err := s.canInvite(&ws, inviterID); err != nil {
		return nil, err
	}

	var inviter models.User
	if err := s.db.First(&inviter, inviterID).Error; err != nil {
		return nil, err
	}

	result := &InviteResult{}
	for _, userID := range userIDs {
		var user models.User
		if err := s.db.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, err
		}

		var existing models.WorkspaceMember
		err := s.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
			First(&existing).Error
		if err == nil {
			result.Skipped = append(result.Skipped, user.Email)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		token, err := utils.GenerateSecureToken(32)
		if err != nil {
			return nil, err
		}
		uid := userID
		invite := models.Invite{
			Token:         token,
			WorkspaceID:   workspaceID,
			InvitedBy:     inviterID,
			Email:         user.Email,
			Role:          role,
			Status:        models.InviteStatusPending,
			ExpiresAt:     time.Now().Add(InviteTTL),
			InvitedUserID: &uid,
			CustomMessage: customMessage,
		}
		if err := s.db.Create(&invite).Error; err != nil {
			return nil, err
		}

		s.notify(invite, inviter.FullName, ws.Name)
		result.Invited = append(result.Invited, user.Email)
	}

	if len(result.Invited) == 0 && len(result.Skipped) > 0 {
		return result, ErrAllAlreadyMembers
	}
	return result, nil
}

func (s *InviteService) notify(invite models.Invite, inviterName, workspaceName string) {
	if s.queue == nil || s.email == nil {
		return
	}
	task := s.email.InviteEmail(invite.Email, inviterName, workspaceName, invite.Token, invite.CustomMessage)
	if err := s.queue.EnqueueEmail(task); err != nil {
		// Notification is best effort, the invite row is authoritative.
		logger.Error().Err(err).Str("email", invite.Email).Msg("Failed to enqueue invite email")
	}
}

// Accept resolves an invite token for the given user. The invite must
// be PENDING and unexpired. A pre-created PENDING membership is
// promoted; otherwise a fresh ACTIVE membership is created.
func (s *InviteService) Accept(token string, userID uint) (*models.Invite, error) {
	var invite models.Invite
	if err := s.db.Where("token = ?", token).First(&invite).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	if !invite.IsValid(time.Now()) {
		return nil, ErrInviteInvalidOrExpired
	}

	err := s.membership.PromoteMember(invite.WorkspaceID, userID)
	switch err {
	case nil:
	case ErrNotMember:
		if err := s.membership.AddMember(invite.WorkspaceID, userID, invite.Role, models.MemberStatusActive, &invite.InvitedBy); err != nil {
			if err == ErrDuplicateMember {
				return nil, ErrAlreadyMember
			}
			return nil, err
		}
	case ErrMembershipNotPending:
		return nil, ErrAlreadyMember
	default:
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      models.InviteStatusAccepted,
		"accepted_at": now,
		"accepted_by": userID,
	}
	if err := s.db.Model(&invite).Updates(updates).Error; err != nil {
		return nil, err
	}
	logger.Info().Uint("workspace_id", invite.WorkspaceID).Uint("user_id", userID).
		Msg("Invite accepted")
	return &invite, nil
}

// Decline marks a PENDING invite declined. Unlike Accept, expiry is not
// checked: declining a stale invite is harmless and keeps the inbox
// clean. Any pre-created PENDING membership is removed.
func (s *InviteService) Decline(token string, userID uint) (*models.Invite, error) {
	var invite models.Invite
	if err := s.db.Where("token = ?", token).First(&invite).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	if invite.Status != models.InviteStatusPending {
		return nil, ErrInviteNotPending
	}

	if err := s.db.Model(&invite).Update("status", models.InviteStatusDeclined).Error; err != nil {
		return nil, err
	}

	// Drop the PENDING roster entry created on the email path, if any.
	err := s.db.Where("workspace_id = ? AND user_id = ? AND status = ?",
		invite.WorkspaceID, userID, models.MemberStatusPending).
		Delete(&models.WorkspaceMember{}).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// GetByToken returns an invite with workspace and inviter preloaded,
// stamping the lazily computed EXPIRED status on stale invites without
// writing it back.
func (s *InviteService) GetByToken(token string) (*models.Invite, error) {
	var invite models.Invite
	err := s.db.Preload("Workspace").Preload("Inviter").
		Where("token = ?", token).First(&invite).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	if invite.Status == models.InviteStatusPending && !invite.ExpiresAt.After(time.Now()) {
		invite.Status = models.InviteStatusExpired
	}
	return &invite, nil
}

// ListPendingForEmail returns the still-valid pending invites for an
// email address. Expired ones are filtered out, not rewritten.
func (s *InviteService) ListPendingForEmail(email string) ([]models.Invite, error) {
	var invites []models.Invite
	err := s.db.Preload("Workspace").Preload("Inviter").
		Where("email = ? AND status = ?", strings.ToLower(strings.TrimSpace(email)), models.InviteStatusPending).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	now := time.Now()
	valid := invites[:0]
	for _, inv := range invites {
		if inv.IsValid(now) {
			valid = append(valid, inv)
		}
	}
	return valid, nil
}

// ListForWorkspace returns all invites for a workspace, newest first.
// Visible to ADMIN or better.
func (s *InviteService) ListForWorkspace(workspaceID, actorID uint) ([]models.Invite, error) {
	if _, err := s.membership.RequireRole(workspaceID, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}
	var invites []models.Invite
	err := s.db.Preload("Inviter").
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range invites {
		if invites[i].Status == models.InviteStatusPending && !invites[i].ExpiresAt.After(now) {
			invites[i].Status = models.InviteStatusExpired
		}
	}
	return invites, nil
}
