package ports

import (
	"context"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
)

// UserRepository persists accounts. Lookups return ErrUserNotFound on a
// miss; writes return ErrUsernameTaken when the username is already used.
type UserRepository interface {
	CreateUser(ctx context.Context, user entities.User) error
	UpdateUser(ctx context.Context, user entities.User) error
	DeleteUser(ctx context.Context, userID string) error
	GetUserByID(ctx context.Context, userID string) (entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (entities.User, error)
	GetRootUser(ctx context.Context) (entities.User, bool, error)
	ListUsers(ctx context.Context, offset int, limit int) ([]entities.User, error)
}

// TokenService issues and checks signed bearer tokens. Validate fails closed
// and never explains why a token was rejected.
type TokenService interface {
	Issue(subjectID string) (string, error)
	Validate(token string) bool
	ExtractSubject(token string) string
}

type PasswordHasher interface {
	Encode(plaintext string) (string, error)
	Matches(plaintext string, hash string) bool
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
