package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growthdeck/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size. Uploads
// and webhook bodies are read in full, so the cap applies before any
// handler buffers the payload.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size"))
			return
		}

		// Wrap the body with a limited reader for streaming requests
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
