package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docintake/internal/app"
	"docintake/internal/authz"
	"docintake/internal/identity"
	"docintake/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
}

// LoginRequest carries raw profile fields. Directory-lookup login ignores organization and role.
type LoginRequest struct {
	Organization string `json:"organization" binding:"max=128"`
	Department   string `json:"department" binding:"max=128"`
	Role         string `json:"role" binding:"max=32"`
	UserID       string `json:"user_id" binding:"max=128"`
}

func NewAuthHandler(authService *app.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.Input{
		Organization: req.Organization,
		Department:   req.Department,
		Role:         req.Role,
		UserID:       req.UserID,
	})
	if err != nil {
		writeError(c, err, "login failed")
		return
	}

	response.OK(c, gin.H{
		"token":       result.Token,
		"profile":     result.Profile,
		"model":       result.Model,
		"permissions": authz.Snapshot(result.Profile.Role),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), sess.ID); err != nil {
		writeError(c, err, "logout failed")
		return
	}
	response.OK(c, gin.H{"session_id": sess.ID})
}

func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{
		"profile":     sess.Profile,
		"model":       sess.Model,
		"permissions": authz.Snapshot(sess.Profile.Role),
		"can_upload":  authz.CanUpload(sess.Profile.Role),
	})
}
