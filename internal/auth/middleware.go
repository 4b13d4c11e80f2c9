package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrihub-io/agrihub/internal/models"
)

// IdentityKey is the gin.Context key holding the resolved Identity.
const IdentityKey = "agrihub.identity"

// Middleware resolves the request identity and aborts with a 401 when
// none can be resolved. The identity id is also stored under
// gin.AuthUserKey for handlers that only need the external id.
func Middleware(logger *zap.SugaredLogger, resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := resolver.Resolve(c)
		if err != nil {
			logger.Debugw("could not resolve identity", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewNotAuthenticatedError())
			return
		}
		c.Set(gin.AuthUserKey, identity.ID)
		c.Set(IdentityKey, identity)
		c.Next()
	}
}
