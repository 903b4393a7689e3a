package auth

import (
	"time"
)

// Claims identifies one browser client.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Validator validates client session tokens
type Validator interface {
	Validate(token string) (*Claims, error)
}

// Issuer mints client session tokens
type Issuer interface {
	Issue(subject string) (string, *Claims, error)
}
