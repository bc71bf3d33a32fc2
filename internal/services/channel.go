package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/models"
	"github.com/huddlehq/huddle/backend/pkg/logger"
)

// ChannelService manages channels and channel messages. Workspace
// membership is resolved first on every call; the per-channel access
// gate only refines that for private channels.
type ChannelService struct {
	db         *gorm.DB
	membership *MembershipService
}

func NewChannelService(db *gorm.DB, membership *MembershipService) *ChannelService {
	return &ChannelService{db: db, membership: membership}
}

// CreateChannelInput carries the fields for a new channel.
type CreateChannelInput struct {
	Name           string
	Description    string
	Type           string
	IsPrivate      bool
	AllowedUserIDs []uint
	AllowedRoles   []string
}

// Create adds a channel to a workspace. Requires ADMIN. Names are
// case-folded; "general" is reserved and reported as a duplicate, the
// same way a real collision would be.
func (s *ChannelService) Create(workspaceID, actorID uint, input CreateChannelInput) (*models.Channel, error) {
	if _, err := s.membership.RequireRole(workspaceID, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(input.Name))
	if name == "" {
		return nil, ErrDuplicateChannelName
	}
	if name == models.GeneralChannelName {
		return nil, ErrDuplicateChannelName
	}

	var count int64
	err := s.db.Model(&models.Channel{}).
		Where("workspace_id = ? AND name = ? AND is_active = ?", workspaceID, name, true).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateChannelName
	}

	channelType := input.Type
	if channelType == "" {
		channelType = models.ChannelTypeText
	}

	channel := models.Channel{
		WorkspaceID:    workspaceID,
		Name:           name,
		Description:    input.Description,
		Type:           channelType,
		IsPrivate:      input.IsPrivate,
		AllowedUserIDs: models.JoinUserIDs(input.AllowedUserIDs),
		AllowedRoles:   models.JoinRoles(input.AllowedRoles),
		CreatedBy:      actorID,
		IsActive:       true,
	}
	if err := s.db.Create(&channel).Error; err != nil {
		return nil, err
	}
	logger.Info().Uint("workspace_id", workspaceID).Str("name", name).
		Bool("private", channel.IsPrivate).Msg("Channel created")
	return &channel, nil
}

// UpdateChannelInput carries optional channel updates.
type UpdateChannelInput struct {
	Description    *string
	IsPrivate      *bool
	AllowedUserIDs []uint
	AllowedRoles   []string
	SetAllowLists  bool
}

// Update edits a channel. Requires ADMIN. The name is immutable, which
// also keeps "general" permanently addressable.
func (s *ChannelService) Update(channelID, actorID uint, input UpdateChannelInput) (*models.Channel, error) {
	channel, err := s.get(channelID)
	if err != nil {
		return nil, err
	}
	if _, err := s.membership.RequireRole(channel.WorkspaceID, actorID, models.RoleAdmin); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.IsPrivate != nil {
		updates["is_private"] = *input.IsPrivate
	}
	if input.SetAllowLists {
		updates["allowed_user_ids"] = models.JoinUserIDs(input.AllowedUserIDs)
		updates["allowed_roles"] = models.JoinRoles(input.AllowedRoles)
	}
	if len(updates) == 0 {
		return channel, nil
	}
	if err := s.db.Model(channel).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.get(channelID)
}

// Delete soft-deletes a channel. Requires ADMIN. The general channel
// is the workspace's landing channel and cannot be deleted.
func (s *ChannelService) Delete(channelID, actorID uint) error {
	channel, err := s.get(channelID)
	if err != nil {
		return err
	}
	if _, err := s.membership.RequireRole(channel.WorkspaceID, actorID, models.RoleAdmin); err != nil {
		return err
	}
	if channel.Name == models.GeneralChannelName {
		return ErrCannotDeleteGeneral
	}
	return s.db.Model(channel).Update("is_active", false).Error
}

func (s *ChannelService) get(channelID uint) (*models.Channel, error) {
	var channel models.Channel
	err := s.db.Where("id = ? AND is_active = ?", channelID, true).First(&channel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return &channel, nil
}

// Get returns a channel if the caller can access it.
func (s *ChannelService) Get(channelID, userID uint) (*models.Channel, error) {
	channel, err := s.get(channelID)
	if err != nil {
		return nil, err
	}
	role, err := s.membership.RoleOf(channel.WorkspaceID, userID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, ErrNotMember
	}
	if !channel.CanUserAccess(userID, role) {
		return nil, ErrChannelAccessDenied
	}
	return channel, nil
}

// CanAccess resolves membership and applies the channel gate in one
// call. False with a nil error means the gate denied, not that
// something went wrong.
func (s *ChannelService) CanAccess(channelID, userID uint) (bool, error) {
	channel, err := s.get(channelID)
	if err != nil {
		if err == ErrChannelNotFound {
			return false, nil
		}
		return false, err
	}
	role, err := s.membership.RoleOf(channel.WorkspaceID, userID)
	if err != nil {
		return false, err
	}
	if role == "" {
		return false, nil
	}
	return channel.CanUserAccess(userID, role), nil
}

// ListForWorkspace returns the active channels the user can access.
// Private channels the gate denies are filtered out entirely rather
// than shown locked.
func (s *ChannelService) ListForWorkspace(workspaceID, userID uint) ([]models.Channel, error) {
	role, err := s.membership.RoleOf(workspaceID, userID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, ErrNotMember
	}

	var channels []models.Channel
	err = s.db.Where("workspace_id = ? AND is_active = ?", workspaceID, true).
		Order("created_at ASC").
		Find(&channels).Error
	if err != nil {
		return nil, err
	}

	visible := channels[:0]
	for _, ch := range channels {
		if ch.CanUserAccess(userID, role) {
			visible = append(visible, ch)
		}
	}
	return visible, nil
}

// SendMessage posts a message to a channel the sender can access.
func (s *ChannelService) SendMessage(channelID, senderID uint, text, image string) (*models.Message, error) {
	channel, err := s.Get(channelID, senderID)
	if err != nil {
		return nil, err
	}

	sid := senderID
	cid := channel.ID
	msg := models.Message{
		SenderID:    &sid,
		ChannelID:   &cid,
		WorkspaceID: &channel.WorkspaceID,
		Text:        text,
		Image:       image,
		Kind:        messageKind(image),
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns channel messages newest-first, cursor-paginated
// on message id. A zero cursor starts from the newest message.
func (s *ChannelService) ListMessages(channelID, userID uint, cursor uint, limit int) ([]models.Message, error) {
	if _, err := s.Get(channelID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := s.db.
		Where("channel_id = ?", channelID).
		Order("id DESC").
		Limit(limit)
	if cursor > 0 {
		query = query.Where("id < ?", cursor)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// SendDirectMessage posts a DM between two users sharing a workspace.
func (s *ChannelService) SendDirectMessage(senderID, receiverID uint, text, image string) (*models.Message, error) {
	sid := senderID
	rid := receiverID
	msg := models.Message{
		SenderID:   &sid,
		ReceiverID: &rid,
		Text:       text,
		Image:      image,
		Kind:       messageKind(image),
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListDirectMessages returns the DM history between the caller and
// another user, newest-first, cursor-paginated on message id.
func (s *ChannelService) ListDirectMessages(userID, otherID uint, cursor uint, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := s.db.
		Where("channel_id IS NULL").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID).
		Order("id DESC").
		Limit(limit)
	if cursor > 0 {
		query = query.Where("id < ?", cursor)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func messageKind(image string) string {
	if image != "" {
		return models.MessageKindImage
	}
	return models.MessageKindText
}
