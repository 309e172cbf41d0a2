package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// APIError is a client-facing failure: the status code and the message shown
// in the {"error": ...} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(status int, format string, args ...interface{}) *APIError {
	return &APIError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// RespondJSON -> semua response sukses dibungkus {"data": ...}
func RespondJSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"data": data})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}
