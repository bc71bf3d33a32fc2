package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/huddlehq/huddle/backend/internal/config"
	"github.com/huddlehq/huddle/backend/internal/middleware"
	"github.com/huddlehq/huddle/backend/internal/services"
	"github.com/huddlehq/huddle/backend/internal/utils"
	"github.com/huddlehq/huddle/backend/pkg/response"
)

type AuthHandler struct {
	auth *services.AuthService
	cfg  *config.Config
}

func NewAuthHandler(auth *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, cfg: cfg}
}

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,max=100"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.Signup(req.Email, req.Password, req.FullName)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, h.cfg.JWT.ExpireHour)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Created(c, gin.H{"user": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, h.cfg.JWT.ExpireHour)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user, "token": token})
}

// Logout acknowledges the client discarding its token. Sessions are
// stateless JWTs, so there is nothing to revoke server-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Message(c, "logged out")
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, user)
}

type updateProfileRequest struct {
	FullName   *string `json:"full_name" binding:"omitempty,max=100"`
	ProfilePic *string `json:"profile_pic" binding:"omitempty,max=500"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.UpdateProfile(middleware.GetUserID(c), req.FullName, req.ProfilePic)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.auth.ChangePassword(middleware.GetUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "password changed")
}
