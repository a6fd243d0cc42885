package httpadapter

import (
	"context"
	"log/slog"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application/commands"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application/queries"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	httptransport "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/transport/http"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

type Handler struct {
	Register  commands.RegisterUseCase
	Login     commands.LoginUseCase
	Manage    commands.ManageUserUseCase
	GetUser   queries.GetUserUseCase
	ListUsers queries.ListUsersUseCase
	Resolver  queries.ResolvePrincipalUseCase
	Logger    *slog.Logger
}

// ResolvePrincipal is the token-to-principal step of the authentication
// gateway.
func (h Handler) ResolvePrincipal(ctx context.Context, token string) identityv1.Principal {
	return h.Resolver.Execute(ctx, token)
}

func (h Handler) RegisterHandler(ctx context.Context, req httptransport.RegisterRequest) (httptransport.AuthResponse, error) {
	result, err := h.Register.Execute(ctx, commands.RegisterCommand{
		Profile: entities.Profile{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Contact:   req.Contact,
		},
		Password: req.Password,
	})
	if err != nil {
		return httptransport.AuthResponse{}, err
	}
	return httptransport.AuthResponse{Token: result.Token, User: mapUser(result.User)}, nil
}

func (h Handler) LoginHandler(ctx context.Context, req httptransport.LoginRequest) (httptransport.AuthResponse, error) {
	result, err := h.Login.Execute(ctx, commands.LoginCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return httptransport.AuthResponse{}, err
	}
	return httptransport.AuthResponse{Token: result.Token, User: mapUser(result.User)}, nil
}

func (h Handler) GetUserHandler(
	ctx context.Context,
	principal identityv1.Principal,
	username string,
) (httptransport.UserResponse, error) {
	user, err := h.GetUser.Execute(ctx, principal, username)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func (h Handler) ListUsersHandler(
	ctx context.Context,
	principal identityv1.Principal,
	index int,
) (httptransport.UserListResponse, error) {
	users, err := h.ListUsers.Execute(ctx, principal, index)
	if err != nil {
		return httptransport.UserListResponse{}, err
	}
	items := make([]httptransport.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, mapUser(user))
	}
	return httptransport.UserListResponse{Index: index, Items: items}, nil
}

func (h Handler) UpdateUserHandler(
	ctx context.Context,
	principal identityv1.Principal,
	username string,
	req httptransport.UpdateUserRequest,
) (httptransport.UserResponse, error) {
	user, err := h.Manage.UpdateUser(ctx, commands.UpdateUserCommand{
		Principal: principal,
		Username:  username,
		Password:  req.Password,
		Profile: entities.Profile{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Contact:   req.Contact,
		},
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func (h Handler) DeleteUserHandler(ctx context.Context, principal identityv1.Principal, username string) error {
	return h.Manage.DeleteUser(ctx, commands.DeleteUserCommand{
		Principal: principal,
		Username:  username,
	})
}

func (h Handler) ChangePermissionsHandler(
	ctx context.Context,
	principal identityv1.Principal,
	username string,
	req httptransport.ChangePermissionsRequest,
) (httptransport.UserResponse, error) {
	// An unknown tier parses to "" and is rejected after authorization.
	tier, _ := identityv1.ParseTier(req.Permissions)
	user, err := h.Manage.ChangePermissions(ctx, commands.ChangePermissionsCommand{
		Principal: principal,
		Username:  username,
		Tier:      tier,
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func mapUser(user entities.User) httptransport.UserResponse {
	return httptransport.UserResponse{
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Contact:     user.Contact,
		Permissions: user.Tier.String(),
		CreatedAt:   user.CreatedAt,
	}
}
