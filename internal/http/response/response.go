package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/apns-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope carries the message twice: detail is what the frontend reads.
type ErrorEnvelope struct {
	Detail string   `json:"detail"`
	Error  APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Detail: msg,
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError renders an *apierr.Error with its own status. Anything else
// becomes a 500 carrying fallbackMsg.
func RespondAPIError(c *gin.Context, err error, fallbackMsg string) {
	if ae, ok := apierr.As(err); ok {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		RespondError(c, status, ae.Code, ae)
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorEnvelope{
		Detail: fallbackMsg,
		Error:  APIError{Message: fallbackMsg, Code: "internal_error"},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
