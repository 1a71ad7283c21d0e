package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openfun/ashley-sub000/internal/shared/errors"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo represents error information in API response
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SuccessResponse sends a successful response with custom status code
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// ErrorResponse sends an error response with a short generic message.
// Details are intentionally never included to avoid leaking whether a
// target exists or which verification step rejected a launch.
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Type:    http.StatusText(statusCode),
			Message: message,
		},
	})
}

// HandleAppError maps an application error onto the HTTP response.
func HandleAppError(c *gin.Context, err error) {
	if appErr := errors.GetAppError(err); appErr != nil {
		// Launch verification failures share a single public message.
		if appErr.Type == errors.ErrorTypeInvalidLaunch {
			ErrorResponse(c, appErr.Code, "invalid LTI launch request")
			return
		}
		ErrorResponse(c, appErr.Code, appErr.Message)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, "internal error")
}
