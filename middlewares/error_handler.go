package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

const genericErrorMessage = "Something went wrong!"

// ErrorHandler renders the last error pushed with c.Error. *utils.APIError
// keeps its status and message; anything else is logged and becomes a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var apiErr *utils.APIError
		if errors.As(err, &apiErr) {
			utils.RespondError(c, apiErr.Status, apiErr)
			return
		}

		utils.ErrorLogger.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		}).Errorf("unhandled error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New(genericErrorMessage))
	}
}

// Recovery turns panics into the same 500 body ErrorHandler uses.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.ErrorLogger.WithField("request_id", c.GetString(requestIDKey)).
			Errorf("panic recovered: %v", recovered)
		utils.RespondError(c, http.StatusInternalServerError, errors.New(genericErrorMessage))
		c.Abort()
	})
}

// NotFound -> route tidak dikenal
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, errors.New("Path not found: "+c.Request.URL.Path))
	}
}
