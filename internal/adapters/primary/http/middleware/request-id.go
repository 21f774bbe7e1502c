package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// ContextRequestID is the gin context key under which RequestID stores the
// id. Logging reads it from here, so build and regression handlers share the
// same correlation id with the pipeline stage logs they produce.
const ContextRequestID = "request_id"

// RequestID accepts a caller-supplied X-Request-ID or mints one, and echoes
// it on the response so a build submission can be traced end to end.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(ContextRequestID, id)
		c.Header(headerRequestID, id)

		c.Next()
	}
}
