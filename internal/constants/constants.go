package constants

import "time"

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
	TokenTTL          = time.Hour
	BcryptCost        = 10
)

// Context keys
const (
	ContextKeyPrincipal = "principal"
)
