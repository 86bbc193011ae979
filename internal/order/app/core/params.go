package core

import "context"

type OrderParams struct {
	Port          int
	MaxConcurrent int
	Storage       string
}

const (
	// in seconds for db response
	WaitTime = 20

	MBReconnInterval = 5
	// in seconds for a broker sink to accept one event
	PublishTimeout = 5

	MaxItems       = 50
	MaxItemQty     = 100
	MaxPriorityNum = 1_000_000

	MaxReceiptSize = 10 << 20
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Session is the identity handed over by the authentication boundary. It is trusted as-is.
type Session struct {
	UserID string
	Role   Role
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
