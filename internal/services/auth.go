package services

import (
	"strings"

	"gorm.io/gorm"

	"github.com/huddlehq/huddle/backend/internal/models"
	"github.com/huddlehq/huddle/backend/internal/utils"
	"github.com/huddlehq/huddle/backend/pkg/logger"
)

// AuthService handles signup, login and credential changes.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Signup creates an account. Emails are case-folded before the
// uniqueness check; an email held by a soft-deleted account is still
// taken until the retention sweep purges it.
func (s *AuthService) Signup(email, password, fullName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    email,
		FullName: fullName,
		Password: hash,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	logger.Info().Uint("user_id", user.ID).Msg("User registered")
	return &user, nil
}

// Login verifies credentials. Soft-deleted accounts cannot log in; they
// must go through the recovery flow first. The distinction is not
// reported to the caller.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.IsDeleted() {
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *AuthService) ChangePassword(userID uint, current, next string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrUserNotFound
		}
		return err
	}
	if !utils.CheckPassword(current, user.Password) {
		return ErrInvalidCredentials
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return err
	}
	return s.db.Model(&user).Update("password", hash).Error
}

// GetUserByID loads a live (non-deleted) user.
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.IsDeleted() {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// UpdateProfile edits display fields on the caller's own account.
func (s *AuthService) UpdateProfile(userID uint, fullName, profilePic *string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if fullName != nil {
		updates["full_name"] = *fullName
	}
	if profilePic != nil {
		updates["profile_pic"] = *profilePic
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetUserByID(userID)
}
