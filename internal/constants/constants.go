package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
)

// Authentication
const (
	MinPasswordLength = 8
)
