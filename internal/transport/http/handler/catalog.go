package handler

import (
	"github.com/gin-gonic/gin"

	"docintake/internal/app"
	"docintake/internal/authz"
	"docintake/internal/identity"
	"docintake/internal/intake"
	"docintake/internal/transport/http/response"
)

// CatalogHandler serves the static choices a client needs before login.
type CatalogHandler struct {
	chatService      *app.ChatService
	identityStrategy string
}

func NewCatalogHandler(chatService *app.ChatService, identityStrategy string) *CatalogHandler {
	return &CatalogHandler{chatService: chatService, identityStrategy: identityStrategy}
}

func (h *CatalogHandler) Get(c *gin.Context) {
	response.OK(c, gin.H{
		"identity_strategy": h.identityStrategy,
		"roles":             authz.Roles(),
		"departments":       identity.Departments,
		"models":            h.chatService.Models(),
		"allowed_types":     intake.AllowedExtensions(),
	})
}
