package domain

import "time"

type ApiToken struct {
	ID        int64
	TokenHash string
	OwnerID   int64
	Name      string
	ExpiresAt *time.Time
}
