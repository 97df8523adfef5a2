package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDKey is the gin context key carrying the request trace ID.
const TraceIDKey = "trace_id"

// TraceIDHeader carries the trace ID on requests and responses, so a game
// client or an upstream proxy can correlate its own logs with ours.
const TraceIDHeader = "X-Trace-ID"

// TraceID tags every request with a trace ID. An inbound header is honored
// so traces survive hops through the gateway; otherwise a fresh UUID is
// minted. The ID is echoed back on the response.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(TraceIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(TraceIDKey, id)
		c.Header(TraceIDHeader, id)
		c.Next()
	}
}

// GetTraceID returns the request's trace ID, or "" outside the middleware.
func GetTraceID(c *gin.Context) string {
	id, _ := c.Value(TraceIDKey).(string)
	return id
}
