package types

import (
	"github.com/google/uuid"

	"github.com/cafenowa/cafenowa-backend/pkg/enums"
)

// Actor identifies who is performing an authenticated operation.
type Actor struct {
	ID       uuid.UUID
	Role     enums.Role
	Username string
}

// RequestMeta carries the client attributes recorded on audit rows.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
