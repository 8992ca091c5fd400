package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"kolibri.dev/communityquest/pkg/apperror"
)

// GetMemberID retrieves the authenticated member id from the context.
func GetMemberID(c *gin.Context) (string, error) {
	memberID := c.GetString("member_id")
	if memberID == "" {
		return "", apperror.ErrUnauthorized
	}
	return memberID, nil
}

// GetMemberName retrieves the authenticated member's display name, falling
// back to the id when the token carried no name.
func GetMemberName(c *gin.Context) string {
	if name := c.GetString("member_name"); name != "" {
		return name
	}
	return c.GetString("member_id")
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code >= http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
