package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/finman_backend/config"
	"bitbucket.org/mmdatafocus/finman_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Auth validates a Bearer token when one is presented and stores the claims
// in the request context. Requests without a token pass through untouched;
// the per-route permission gate decides whether anonymous access is allowed.
func Auth(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token."})
			c.Abort()
			return
		}
		token := auth[len(bearer):]

		revoked, err := config.IsTokenRevoked(c.Request.Context(), rdb, token)
		if err != nil || revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed."})
			c.Abort()
			return
		}

		validated, err := utils.JwtValidate(token)
		if err != nil || !validated.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed."})
			c.Abort()
			return
		}

		claims, _ := validated.Claims.(*utils.JwtCustomClaim)
		ctx := utils.SetClaimsInContext(c.Request.Context(), claims)
		ctx = utils.SetTokenInContext(ctx, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
