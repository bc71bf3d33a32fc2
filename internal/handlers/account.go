package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/huddlehq/huddle/backend/internal/middleware"
	"github.com/huddlehq/huddle/backend/internal/services"
	"github.com/huddlehq/huddle/backend/pkg/response"
)

type AccountHandler struct {
	accounts *services.AccountService
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type deleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
	// Hard requests the irreversible cascade instead of the default
	// soft delete with a recovery window.
	Hard bool `json:"hard"`
}

func (h *AccountHandler) Delete(c *gin.Context) {
	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	if req.Hard {
		if err := h.accounts.HardDelete(userID, req.Password); err != nil {
			handleServiceError(c, err)
			return
		}
		response.Message(c, "account permanently deleted")
		return
	}

	if err := h.accounts.SoftDelete(userID, req.Password); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "account deactivated")
}

type recoveryRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestRecovery always answers the same way for unknown and known
// emails so the endpoint cannot be used for enumeration. Only the rate
// limit is allowed to differ, it reveals nothing about existence the
// caller did not already prove.
func (h *AccountHandler) RequestRecovery(c *gin.Context) {
	var req recoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.accounts.RequestRecovery(req.Email); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "if the account exists and is recoverable, an email has been sent")
}

func (h *AccountHandler) ValidateRecoveryToken(c *gin.Context) {
	if err := h.accounts.ValidateRecoveryToken(c.Param("token")); err != nil {
		handleServiceError(c, err)
		return
	}
	response.Message(c, "token valid")
}

func (h *AccountHandler) Recover(c *gin.Context) {
	user, err := h.accounts.Recover(c.Param("token"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// Export streams the caller's account data as a JSON download.
func (h *AccountHandler) Export(c *gin.Context) {
	data, err := h.accounts.Export(middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("account-export-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/json", data)
}
