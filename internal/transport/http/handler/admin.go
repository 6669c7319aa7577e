package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docintake/internal/app"
	"docintake/internal/transport/http/response"
)

type AdminHandler struct {
	reconciler       *app.Reconciler
	directoryService *app.DirectoryService
}

type DirectoryEntryRequest struct {
	UserID       string `json:"user_id" binding:"required,max=128"`
	Name         string `json:"name" binding:"max=128"`
	Organization string `json:"organization" binding:"required,max=128"`
	Role         string `json:"role" binding:"required"`
}

func NewAdminHandler(reconciler *app.Reconciler, directoryService *app.DirectoryService) *AdminHandler {
	return &AdminHandler{reconciler: reconciler, directoryService: directoryService}
}

func (h *AdminHandler) ListUploads(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	records, err := h.reconciler.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		writeError(c, err, "list uploads failed")
		return
	}
	response.OK(c, records)
}

func (h *AdminHandler) GetUpload(c *gin.Context) {
	record, err := h.reconciler.Get(c.Request.Context(), c.Query("key"))
	if err != nil {
		writeError(c, err, "get upload failed")
		return
	}
	response.OK(c, record)
}

func (h *AdminHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Run(c.Request.Context())
	if err != nil {
		writeError(c, err, "reconcile failed")
		return
	}
	response.OK(c, report)
}

func (h *AdminHandler) UpsertDirectoryEntry(c *gin.Context) {
	var req DirectoryEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	entry, err := h.directoryService.Upsert(c.Request.Context(), app.DirectoryEntryInput{
		UserID:       req.UserID,
		Name:         req.Name,
		Organization: req.Organization,
		Role:         req.Role,
	})
	if err != nil {
		writeError(c, err, "save directory entry failed")
		return
	}
	response.OK(c, entry)
}

func (h *AdminHandler) ListDirectory(c *gin.Context) {
	entries, err := h.directoryService.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "list directory failed")
		return
	}
	response.OK(c, entries)
}
