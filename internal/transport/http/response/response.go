package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                  = 0
	CodeBadRequest          = 40000
	CodeProfileIncomplete   = 40001
	CodeEmptyFile           = 40002
	CodeModelNotAllowed     = 40003
	CodeUnauthorized        = 40100
	CodeUserNotFound        = 40101
	CodeSessionExpired      = 40102
	CodePermissionDenied    = 40300
	CodeSessionNotFound     = 40401
	CodeKeyCollision        = 40900
	CodeFileTooLarge        = 41300
	CodeUnsupportedFileType = 41500
	CodeRateLimited         = 42900
	CodeInternalServer      = 50000
	CodeCompletionFailed    = 50200
	CodePartialUpload       = 50201
	CodeStoreUnavailable    = 50300
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// ErrorWithData is Error plus a payload the caller needs to recover, such as the keys of a partial upload.
func ErrorWithData(c *gin.Context, httpStatus, code int, message string, data interface{}) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}
