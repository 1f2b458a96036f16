// Package ctxutil carries request-scoped values (authenticated principal,
// trace id) across the gin and context.Context boundary.
package ctxutil

import (
	"context"

	"github.com/examhub-dev/examhub/consts"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ginContextKey = consts.GinContextKey
	userIDKey     = consts.UserKey
	usernameKey   = consts.UsernameKey
	userRoleKey   = consts.UserRoleKey

	// TraceIDKey is the field name used for trace correlation in logs.
	TraceIDKey = "trace_id"
)

type ctxKey string

// FromGinContext extracts the context.Context from *gin.Context.
func FromGinContext(c *gin.Context) context.Context {
	return c.Request.Context()
}

// WithGinContext returns a context.Context that embeds the *gin.Context.
func WithGinContext(ctx context.Context, c *gin.Context) context.Context {
	return context.WithValue(ctx, ctxKey(ginContextKey), c)
}

// GetGinContext extracts *gin.Context from context.Context if it exists.
func GetGinContext(ctx context.Context) (*gin.Context, bool) {
	if c, ok := ctx.Value(ctxKey(ginContextKey)).(*gin.Context); ok {
		return c, ok
	}
	return nil, false
}

// GetValue retrieves a value from the context.
func GetValue(ctx context.Context, key string) any {
	if c, ok := GetGinContext(ctx); ok {
		if val, exists := c.Get(key); exists {
			return val
		}
	}
	return ctx.Value(ctxKey(key))
}

// SetValue sets a value to the context.
func SetValue(ctx context.Context, key string, val any) context.Context {
	if c, ok := GetGinContext(ctx); ok {
		c.Set(key, val)
	}
	return context.WithValue(ctx, ctxKey(key), val)
}

// SetUserID sets user id to context.Context.
func SetUserID(ctx context.Context, uid string) context.Context {
	return SetValue(ctx, userIDKey, uid)
}

// GetUserID gets user id from context.Context.
func GetUserID(ctx context.Context) string {
	if uid, ok := GetValue(ctx, userIDKey).(string); ok {
		return uid
	}
	return ""
}

// SetUsername sets username to context.Context.
func SetUsername(ctx context.Context, name string) context.Context {
	return SetValue(ctx, usernameKey, name)
}

// GetUsername gets username from context.Context.
func GetUsername(ctx context.Context) string {
	if name, ok := GetValue(ctx, usernameKey).(string); ok {
		return name
	}
	return ""
}

// SetUserRole sets user role to context.Context.
func SetUserRole(ctx context.Context, role string) context.Context {
	return SetValue(ctx, userRoleKey, role)
}

// GetUserRole gets user role from context.Context.
func GetUserRole(ctx context.Context) string {
	if role, ok := GetValue(ctx, userRoleKey).(string); ok {
		return role
	}
	return ""
}

// SetTraceID sets trace id to context.Context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return SetValue(ctx, TraceIDKey, traceID)
}

// GetTraceID gets trace id from context.Context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := GetValue(ctx, TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// EnsureTraceID returns the context's trace id, generating one if absent.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if traceID := GetTraceID(ctx); traceID != "" {
		return ctx, traceID
	}
	traceID := uuid.NewString()
	return SetTraceID(ctx, traceID), traceID
}
