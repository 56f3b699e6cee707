package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/trit-recommender/internal/platform/apierr"
)

// Envelope is the body of every API response.
type Envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

const (
	CodeSuccess         = "SUCCESS"
	CodeError           = "ERROR"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
)

func JSON(c *gin.Context, status int, code, message string, data any) {
	c.JSON(status, Envelope{Code: code, Message: message, Data: data})
}

func OK(c *gin.Context, message string, data any) {
	JSON(c, http.StatusOK, CodeSuccess, message, data)
}

// StatusFor maps an envelope code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err, honoring the status and code of an *apierr.Error.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := CodeError
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if ae, ok := apierr.As(err); ok {
		if ae.Status != 0 {
			status = ae.Status
		}
		if ae.Code != "" {
			code = ae.Code
		}
	}
	JSON(c, status, code, msg, nil)
}

func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
