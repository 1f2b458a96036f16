package consts

// AuthorizationKey Authorization header key
const AuthorizationKey string = "Authorization"

// BearerKey Bearer token prefix
const BearerKey string = "Bearer "

// GinContextKey gin context key
const GinContextKey = "gin-context"

// TraceKey global trace id
const TraceKey string = "x-eh-trace"

// UserKey global user id
const UserKey string = "x-eh-uid"

// UsernameKey global username
const UsernameKey string = "x-eh-uname"

// UserRoleKey global user role
const UserRoleKey string = "x-eh-role"
