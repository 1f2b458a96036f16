// Package middleware extracts the authenticated principal from incoming
// requests.
package middleware

import (
	"strings"

	"github.com/examhub-dev/examhub/consts"
	"github.com/examhub-dev/examhub/ctxutil"
	"github.com/examhub-dev/examhub/net/resp"
	"github.com/examhub-dev/examhub/security/jwt"

	"github.com/gin-gonic/gin"
	jwtgo "github.com/golang-jwt/jwt/v5"
)

// Principal payload keys inside the access token.
const (
	payloadUserID   = "user_id"
	payloadUsername = "username"
	payloadRole     = "role"
)

// Auth validates the Bearer token and stores the principal on the request
// context. Requests without a valid access token are rejected.
func Auth(tm *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(consts.AuthorizationKey)
		if raw == "" || !strings.HasPrefix(raw, consts.BearerKey) {
			resp.Fail(c.Writer, resp.UnAuthorized("missing bearer token"))
			c.Abort()
			return
		}

		token, err := tm.ValidateToken(strings.TrimPrefix(raw, consts.BearerKey))
		if err != nil {
			resp.Fail(c.Writer, resp.UnAuthorized("invalid token"))
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwtgo.MapClaims)
		if !ok || !jwt.IsAccessToken(claims) {
			resp.Fail(c.Writer, resp.UnAuthorized("access token required"))
			c.Abort()
			return
		}

		uid := jwt.GetPayloadString(claims, payloadUserID)
		if uid == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("token carries no principal"))
			c.Abort()
			return
		}

		ctx := ctxutil.WithGinContext(c.Request.Context(), c)
		ctx = ctxutil.SetUserID(ctx, uid)
		ctx = ctxutil.SetUsername(ctx, jwt.GetPayloadString(claims, payloadUsername))
		ctx = ctxutil.SetUserRole(ctx, jwt.GetPayloadString(claims, payloadRole))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
