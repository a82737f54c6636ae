package mw

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ActorHeader carries the validated admin identity set by the upstream auth
// layer. This service never authenticates; it only requires that upstream
// already did.
const ActorHeader = "X-Admin-User"

const actorKey = "actor"

// RequireActor rejects requests that arrive without a validated identity.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeader)
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authenticated identity"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// Actor returns the validated identity stored by RequireActor.
func Actor(c *gin.Context) string {
	return c.GetString(actorKey)
}
