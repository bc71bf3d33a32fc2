package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/models"
	"github.com/huddlehq/huddle/backend/internal/utils"
	"github.com/huddlehq/huddle/backend/pkg/logger"
)

const (
	// RetentionPeriod is the grace window between soft delete and
	// permanent erasure by the nightly sweep.
	RetentionPeriod = 30 * 24 * time.Hour

	// RecoveryTokenTTL bounds how long a recovery token stays usable.
	RecoveryTokenTTL = 24 * time.Hour

	// RecoveryEmailInterval rate-limits token issuance per account.
	RecoveryEmailInterval = time.Hour

	purgeLockName = "account_purge"
	purgeCronSpec = "0 2 * * *"
)

// AccountService owns soft delete, the hard-delete cascade, recovery
// and the retention sweep.
type AccountService struct {
	db         *gorm.DB
	queue      TaskQueue
	email      *EmailService
	instanceID string
	cron       *cron.Cron
}

func NewAccountService(db *gorm.DB, queue TaskQueue, email *EmailService) *AccountService {
	return &AccountService{
		db:         db,
		queue:      queue,
		email:      email,
		instanceID: uuid.NewString(),
	}
}

func (s *AccountService) verify(userID uint, password string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !utils.CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// SoftDelete stamps deletedAt after re-verifying the password. It is
// idempotent: an already-deleted account is left untouched. Nothing
// cascades at this point.
func (s *AccountService) SoftDelete(userID uint, password string) error {
	user, err := s.verify(userID, password)
	if err != nil {
		return err
	}
	if user.IsDeleted() {
		return nil
	}
	now := time.Now()
	if err := s.db.Model(user).Update("deleted_at", now).Error; err != nil {
		return err
	}
	logger.Info().Uint("user_id", userID).Msg("Account soft-deleted")
	return nil
}

// HardDelete re-verifies the password and runs the cascade immediately.
func (s *AccountService) HardDelete(userID uint, password string) error {
	if _, err := s.verify(userID, password); err != nil {
		return err
	}
	return s.cascade(userID)
}

// cascade permanently erases a user. Steps run in order, best effort:
// a failed step is logged and the cascade moves on, so a single broken
// collaborator never blocks the user-row removal at the end.
func (s *AccountService) cascade(userID uint) error {
	log := logger.With("cascade").With().Uint("user_id", userID).Logger()

	// 1. Repoint authored direct messages at their receiver so the
	// counterpart keeps the conversation. The transfer fields record
	// the original author.
	now := time.Now()
	err := s.db.Model(&models.Message{}).
		Where("sender_id = ? AND channel_id IS NULL AND receiver_id IS NOT NULL AND receiver_id <> ?", userID, userID).
		Updates(map[string]interface{}{
			"sender_id":             gorm.Expr("receiver_id"),
			"ownership_transferred": true,
			"original_sender_id":    userID,
			"transferred_at":        now,
		}).Error
	if err != nil {
		log.Error().Err(err).Msg("Cascade: message ownership transfer failed")
	}

	// 2. Delete remaining direct messages touching the user. The rows
	// transferred in step 1 no longer reference the user as sender and
	// survive.
	err = s.db.Where("channel_id IS NULL AND (sender_id = ? OR receiver_id = ?)", userID, userID).
		Delete(&models.Message{}).Error
	if err != nil {
		log.Error().Err(err).Msg("Cascade: direct message deletion failed")
	}

	// 3. Remove the user from every workspace roster. No permission
	// check: the cascade is self- or system-initiated.
	err = s.db.Where("user_id = ?", userID).Delete(&models.WorkspaceMember{}).Error
	if err != nil {
		log.Error().Err(err).Msg("Cascade: membership removal failed")
	}

	// 4. Deactivate owned workspaces. There is no ownership transfer,
	// so an owned workspace simply goes inert.
	err = s.db.Model(&models.Workspace{}).
		Where("owner_id = ?", userID).
		Update("is_active", false).Error
	if err != nil {
		log.Error().Err(err).Msg("Cascade: workspace deactivation failed")
	}

	// 5. Clear task assignments and anonymize authored channel messages.
	err = s.db.Model(&models.Task{}).
		Where("assignee_id = ?", userID).
		Update("assignee_id", nil).Error
	if err != nil {
		log.Error().Err(err).Msg("Cascade: task assignee clearing failed")
	}
	err = s.db.Model(&models.Message{}).
		Where("sender_id = ? AND channel_id IS NOT NULL", userID).
		Updates(map[string]interface{}{
			"sender_id":      nil,
			"sender_deleted": true,
		}).Error
	if err != nil {
		log.Error().Err(err).Msg("Cascade: channel message anonymization failed")
	}

	// 6. Drop outstanding invites issued by or addressed to the user.
	var user models.User
	if err := s.db.First(&user, userID).Error; err == nil {
		if err := s.db.Where("invited_by = ? OR email = ? OR invited_user_id = ?",
			userID, user.Email, userID).Delete(&models.Invite{}).Error; err != nil {
			log.Error().Err(err).Msg("Cascade: invite deletion failed")
		}
	}

	// 7. The user row itself goes last so an interrupted cascade can be
	// re-run against the same id.
	if err := s.db.Unscoped().Delete(&models.User{}, userID).Error; err != nil {
		log.Error().Err(err).Msg("Cascade: user row deletion failed")
		return err
	}

	log.Info().Msg("Account hard-deleted")
	return nil
}

// RequestRecovery issues a recovery token for a soft-deleted account.
// Unknown emails and live accounts return ("", nil) so the endpoint
// can answer identically either way and stay enumeration-proof. A
// token issued less than an hour ago blocks reissue.
func (s *AccountService) RequestRecovery(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	if !user.IsDeleted() {
		return "", nil
	}

	now := time.Now()
	if user.RecoveryEmailSent != nil && now.Sub(*user.RecoveryEmailSent) < RecoveryEmailInterval {
		return "", ErrRecoveryRateLimited
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return "", err
	}
	expires := now.Add(RecoveryTokenTTL)
	err = s.db.Model(&user).Updates(map[string]interface{}{
		"recovery_token":         token,
		"recovery_token_expires": expires,
		"recovery_email_sent":    now,
	}).Error
	if err != nil {
		return "", err
	}

	if s.queue != nil && s.email != nil {
		task := s.email.RecoveryEmail(user.Email, token)
		if err := s.queue.EnqueueEmail(task); err != nil {
			logger.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to enqueue recovery email")
		}
	}
	logger.Info().Uint("user_id", user.ID).Msg("Recovery token issued")
	return token, nil
}

// Recover restores a soft-deleted account from a valid token, clearing
// deletedAt and every recovery field.
func (s *AccountService) Recover(token string) (*models.User, error) {
	user, err := s.findByRecoveryToken(token)
	if err != nil {
		return nil, err
	}
	err = s.db.Model(user).Updates(map[string]interface{}{
		"deleted_at":             nil,
		"recovery_token":         "",
		"recovery_token_expires": nil,
		"recovery_email_sent":    nil,
	}).Error
	if err != nil {
		return nil, err
	}
	logger.Info().Uint("user_id", user.ID).Msg("Account recovered")
	user.DeletedAt = nil
	return user, nil
}

// ValidateRecoveryToken checks a token without consuming it, for the
// frontend's pre-flight check on the recovery page.
func (s *AccountService) ValidateRecoveryToken(token string) error {
	_, err := s.findByRecoveryToken(token)
	return err
}

func (s *AccountService) findByRecoveryToken(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidRecoveryToken
	}
	var user models.User
	err := s.db.Where("recovery_token = ?", token).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidRecoveryToken
		}
		return nil, err
	}
	if !user.IsDeleted() {
		return nil, ErrInvalidRecoveryToken
	}
	if user.RecoveryTokenExpires == nil || !user.RecoveryTokenExpires.After(time.Now()) {
		return nil, ErrInvalidRecoveryToken
	}
	return &user, nil
}

// AccountExport bundles a user's data for download.
type AccountExport struct {
	User        models.User              `json:"user"`
	Memberships []models.WorkspaceMember `json:"memberships"`
	Messages    []models.Message         `json:"messages"`
	Invites     []models.Invite          `json:"invites"`
	ExportedAt  time.Time                `json:"exported_at"`
}

// Export gathers the user's account data as a JSON blob.
func (s *AccountService) Export(userID uint) ([]byte, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	export := AccountExport{User: user, ExportedAt: time.Now()}
	if err := s.db.Where("user_id = ?", userID).Find(&export.Memberships).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("sender_id = ?", userID).Find(&export.Messages).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("invited_by = ? OR email = ?", userID, user.Email).Find(&export.Invites).Error; err != nil {
		return nil, err
	}
	return json.MarshalIndent(export, "", "  ")
}

// PurgeExpired hard-deletes every account whose soft-delete grace
// period has elapsed as of now. Returns the number of accounts purged.
func (s *AccountService) PurgeExpired(now time.Time) (int, error) {
	cutoff := now.Add(-RetentionPeriod)
	var users []models.User
	err := s.db.Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).Find(&users).Error
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, user := range users {
		if err := s.cascade(user.ID); err != nil {
			logger.Error().Err(err).Uint("user_id", user.ID).Msg("Purge sweep failed for account")
			continue
		}
		purged++
	}
	if purged > 0 {
		logger.Info().Int("purged", purged).Msg("Purge sweep completed")
	}
	return purged, nil
}

// acquirePurgeLock claims the sweep for this period. The unique index
// on (lock_name, lock_key) makes the claim race-free across instances.
func (s *AccountService) acquirePurgeLock(now time.Time) bool {
	lock := models.SchedulerLock{
		LockName:  purgeLockName,
		LockKey:   now.Format("2006-01-02"),
		LockedBy:  s.instanceID,
		LockedAt:  now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	if err := s.db.Create(&lock).Error; err != nil {
		logger.Debug().Str("instance", s.instanceID).Msg("Purge lock held elsewhere, skipping sweep")
		return false
	}
	// Expired locks from prior periods are garbage, clean opportunistically.
	s.db.Where("lock_name = ? AND expires_at < ?", purgeLockName, now).
		Delete(&models.SchedulerLock{})
	return true
}

// StartPurgeScheduler runs the retention sweep nightly at 02:00. Safe
// to call on every instance: the database lock elects one runner per
// night.
func (s *AccountService) StartPurgeScheduler() error {
	c := cron.New()
	_, err := c.AddFunc(purgeCronSpec, func() {
		now := time.Now()
		if !s.acquirePurgeLock(now) {
			return
		}
		if _, err := s.PurgeExpired(now); err != nil {
			logger.Error().Err(err).Msg("Purge sweep errored")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	s.cron = c
	logger.Info().Str("schedule", purgeCronSpec).Str("instance", s.instanceID).
		Msg("Account purge scheduler started")
	return nil
}

// StopPurgeScheduler stops the cron loop, waiting for a running sweep.
func (s *AccountService) StopPurgeScheduler() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
}
