package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docintake/internal/app"
	"docintake/internal/transport/http/response"
)

type DocumentHandler struct {
	uploadService  *app.UploadService
	chatService    *app.ChatService
	maxUploadBytes int64
}

func NewDocumentHandler(uploadService *app.UploadService, chatService *app.ChatService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{
		uploadService:  uploadService,
		chatService:    chatService,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *DocumentHandler) Namespace(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}
	ns, err := h.uploadService.Preview(&sess.Profile)
	if err != nil {
		writeError(c, err, "namespace preview failed")
		return
	}
	response.OK(c, gin.H{
		"namespace":    ns,
		"organization": sess.Profile.Organization,
		"department":   sess.Profile.Department,
	})
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	sess, ok := getSession(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		// Room for multipart framing on top of the file itself.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, app.ErrFileTooLarge, "")
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "multipart field \"file\" is required")
		return
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		writeError(c, app.ErrFileTooLarge, "")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read upload failed")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read upload failed")
		return
	}

	filename := baseName(fileHeader.Filename)
	result, err := h.uploadService.Upload(c.Request.Context(), app.UploadInput{
		Profile:  &sess.Profile,
		Filename: filename,
		Data:     data,
	})
	if err != nil {
		writeError(c, err, "upload failed")
		return
	}

	if err := h.chatService.AppendUploadNotice(c.Request.Context(), sess.ID, filename); err != nil {
		_ = c.Error(err)
	}
	response.OK(c, result)
}

// baseName drops any client-side directory, including Windows paths some browsers send.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSpace(name)
}
