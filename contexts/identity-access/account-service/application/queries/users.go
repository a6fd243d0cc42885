package queries

import (
	"context"
	"strings"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

const defaultPageSize = 20

type GetUserUseCase struct {
	Users ports.UserRepository
}

// Execute requires an authenticated caller of any tier.
func (u GetUserUseCase) Execute(ctx context.Context, principal identityv1.Principal, username string) (entities.User, error) {
	if !principal.Authenticated {
		return entities.User{}, domainerrors.ErrUnauthenticated
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return entities.User{}, domainerrors.ErrInvalidUsername
	}
	return u.Users.GetUserByUsername(ctx, username)
}

// ListUsersUseCase pages through accounts. index is an item offset that is
// rounded down to the start of its page.
type ListUsersUseCase struct {
	Users    ports.UserRepository
	PageSize int
}

func (u ListUsersUseCase) Execute(ctx context.Context, principal identityv1.Principal, index int) ([]entities.User, error) {
	if !principal.Authenticated {
		return nil, domainerrors.ErrUnauthenticated
	}
	if index < 0 {
		return nil, domainerrors.ErrInvalidPageIndex
	}
	size := u.pageSize()
	page := index / size
	return u.Users.ListUsers(ctx, page*size, size)
}

func (u ListUsersUseCase) pageSize() int {
	if u.PageSize <= 0 {
		return defaultPageSize
	}
	return u.PageSize
}
