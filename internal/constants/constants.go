package constants

// Session
const (
	SessionCookieName = "sotex_session"
	ContextKeyUserID  = "user_id"
)

// Validation
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// DefaultNotificationGroupID is the structural fallback group. Roles
// without any configured notification group materialize their user
// rows against this group so that no user is invisible to recipient
// queries. It is never exposed through the settings endpoints.
const DefaultNotificationGroupID uint64 = 1
