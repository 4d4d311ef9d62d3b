package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id between the SPA, the proxy and
// the API logs.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a correlation id: an inbound
// X-Request-ID is reused so traces survive the proxy hop, otherwise a fresh
// uuid is minted. The id lands in the context (for the response envelope) and
// on the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
