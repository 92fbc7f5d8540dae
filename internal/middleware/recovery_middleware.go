package middleware

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minhvo/tiemao-backend/internal/errors"
	"github.com/minhvo/tiemao-backend/pkg/logger"
)

// errorLogFile receives panic reports for post-mortem inspection.
const errorLogFile = "last_error.log"

// RecoveryMiddleware turns panics into 500 responses. The stack trace is
// appended to last_error.log; the response only carries it for loopback
// clients outside production.
func RecoveryMiddleware(environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()

				log := GetLoggerFromContext(c)
				log.Error("Panic recovered", fmt.Errorf("%v", r), map[string]interface{}{
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})

				writeErrorLog(c, r, stack)

				if showDetail(c, environment) {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error":   errors.InternalServerError,
						"message": fmt.Sprintf("%v", r),
						"stack":   string(stack),
					})
				} else {
					errors.InternalError(c, "")
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

func writeErrorLog(c *gin.Context, r interface{}, stack []byte) {
	f, err := os.OpenFile(errorLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Error("Failed to open error log file", err, nil)
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "[%s] %s %s\npanic: %v\n%s\n\n",
		time.Now().Format(time.RFC3339), c.Request.Method, c.Request.URL.Path, r, stack)
}

func showDetail(c *gin.Context, environment string) bool {
	if environment == "production" {
		return false
	}
	ip := net.ParseIP(c.ClientIP())
	return ip != nil && ip.IsLoopback()
}
