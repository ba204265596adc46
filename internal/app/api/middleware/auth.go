package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/remedyhub/entitlement/internal/app/service/identity"
	"github.com/remedyhub/entitlement/pkg/logctx"
	"github.com/remedyhub/entitlement/pkg/response"
)

const AdminTokenHeader = "X-Admin-Token"

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// UserID returns the authenticated user id, or "" on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(logctx.UserIDKey)
}

// Authenticate requires a verified identity token and scopes the request
// logger to the user.
func Authenticate(v identity.Verifier, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, base)
		id, err := v.Verify(c.Request.Context(), BearerToken(c))
		if err != nil || !id.Verified {
			lg.Infow("unauthenticated request", "err", err)
			c.AbortWithStatusJSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeUnauthenticated, nil))
			return
		}
		c.Set(logctx.UserIDKey, id.UserID)
		setLogger(c, lg.With("user_id", id.UserID))
		c.Next()
	}
}

// AdminAuth guards admin routes with a shared token. An empty configured
// token disables the admin API.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(AdminTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeUnauthenticated, nil))
			return
		}
		c.Next()
	}
}
