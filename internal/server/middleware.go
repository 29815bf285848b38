package server

import (
	"strings"

	"github.com/franqia/console/internal/observability/obsctx"
	"github.com/gin-gonic/gin"
)

const actorHeader = "X-Admin-Actor"

// ActorContext propagates the caller's identity from the gateway header into
// the request context, where the audit trail picks it up. Authentication
// itself happens upstream; this service only records the identity it is given.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := strings.TrimSpace(c.GetHeader(actorHeader)); actor != "" {
			ctx := obsctx.WithActor(c.Request.Context(), actor)
			c.Request = c.Request.WithContext(ctx)
			c.Set("actor", actor)
		}
		c.Next()
	}
}

// AdminActorRequired gates mutations on the gateway having identified an
// admin caller.
func (s *Server) AdminActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader(actorHeader)) == "" {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}
