package apperror

import (
	"log"

	"github.com/gin-gonic/gin"
)

// Respond renders err as {"error": message} with the matching status, plus
// a "fields" map for validation errors. Transient errors are logged with
// their cause and shown with their safe message only.
func Respond(c *gin.Context, err error) {
	appErr := As(err)
	if appErr.Kind == KindTransient {
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	body := gin.H{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	c.JSON(appErr.Status(), body)
}
