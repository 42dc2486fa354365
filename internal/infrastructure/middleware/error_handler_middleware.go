package middleware

import (
	"net/http"

	"moviehub/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// serverErrorMessage is the only detail a client gets for a failure it
// cannot correct.
const serverErrorMessage = "Server error"

// ErrorHandlerMiddleware logs errors handlers attached with c.Error.
// Handlers write their own envelopes; this middleware only answers when
// nothing was written.
func ErrorHandlerMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := errors.GetAppError(err)

		if appErr != nil {
			log := logger.Infow
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				log = logger.Errorw
			}
			log("request failed",
				"code", appErr.Code,
				"message", appErr.Message,
				"status", appErr.HTTPStatus,
				"cause", appErr.Cause,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"context", appErr.Context,
			)
		} else {
			logger.Errorw("unhandled error",
				"error", err.Error(),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)
		}

		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		message := serverErrorMessage
		if appErr != nil && appErr.HTTPStatus < http.StatusInternalServerError {
			status = appErr.HTTPStatus
			message = appErr.Message
		}
		c.JSON(status, gin.H{"success": false, "message": message})
	}
}

// RecoveryMiddleware turns a panic into the generic 500 envelope.
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": serverErrorMessage,
				})
			}
		}()

		c.Next()
	}
}
