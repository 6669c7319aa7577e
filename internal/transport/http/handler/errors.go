package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docintake/internal/app"
	"docintake/internal/session"
	"docintake/internal/transport/http/middleware"
	"docintake/internal/transport/http/response"
)

// writeError maps the service error taxonomy onto HTTP. fallback is the message for unexpected errors.
func writeError(c *gin.Context, err error, fallback string) {
	var partial *app.PartialUploadError
	switch {
	case errors.As(err, &partial):
		response.ErrorWithData(c, http.StatusBadGateway, response.CodePartialUpload,
			"document stored but its metadata was not; an administrator can reconcile it",
			gin.H{"object_key": partial.ObjectKey, "metadata_key": partial.MetadataKey})
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrProfileIncomplete):
		response.Error(c, http.StatusBadRequest, response.CodeProfileIncomplete, err.Error())
	case errors.Is(err, app.ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, response.CodeEmptyFile, err.Error())
	case errors.Is(err, app.ErrModelNotAllowed):
		response.Error(c, http.StatusBadRequest, response.CodeModelNotAllowed, err.Error())
	case errors.Is(err, app.ErrUserNotFound):
		response.Error(c, http.StatusUnauthorized, response.CodeUserNotFound, err.Error())
	case errors.Is(err, app.ErrPermissionDenied):
		response.Error(c, http.StatusForbidden, response.CodePermissionDenied, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
	case errors.Is(err, app.ErrKeyCollision):
		response.Error(c, http.StatusConflict, response.CodeKeyCollision, "a document with the same name was stored this second, retry")
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, err.Error())
	case errors.Is(err, app.ErrUnsupportedFileType):
		response.Error(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedFileType, err.Error())
	case errors.Is(err, app.ErrCompletionRequestFailed):
		response.Error(c, http.StatusBadGateway, response.CodeCompletionFailed, "completion request failed")
	case errors.Is(err, app.ErrStoreUnavailable):
		response.Error(c, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "object store unavailable")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func getSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
	}
	return sess, ok
}
