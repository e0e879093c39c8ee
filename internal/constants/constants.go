package constants

// Context keys
const (
	ContextKeyCurrentUser = "current_user"
	ContextKeyTask        = "task"
)

// Pagination
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Authorization header
const (
	AuthorizationHeader = "Authorization"
	BearerScheme        = "Bearer"
)
