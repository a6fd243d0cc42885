package account

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/adapters/credentials"
	httpadapter "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/adapters/http"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/adapters/memory"
	tokenadapter "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/adapters/token"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application/commands"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application/queries"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"

	"golang.org/x/crypto/bcrypt"
)

type Module struct {
	Handler    httpadapter.Handler
	Authority  queries.AuthorityUseCase
	Root       commands.ReconcileRootUseCase
	IssueToken commands.IssueTokenUseCase
	Store      *memory.Store
}

type Dependencies struct {
	Users    ports.UserRepository
	Hasher   ports.PasswordHasher
	Tokens   ports.TokenService
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	PageSize int
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	resolver := queries.ResolvePrincipalUseCase{
		Users:  deps.Users,
		Tokens: deps.Tokens,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Register: commands.RegisterUseCase{
				Users:  deps.Users,
				Hasher: deps.Hasher,
				Tokens: deps.Tokens,
				Clock:  deps.Clock,
				IDGen:  deps.IDGen,
				Logger: deps.Logger,
			},
			Login: commands.LoginUseCase{
				Users:  deps.Users,
				Hasher: deps.Hasher,
				Tokens: deps.Tokens,
				Logger: deps.Logger,
			},
			Manage: commands.ManageUserUseCase{
				Users:  deps.Users,
				Hasher: deps.Hasher,
				Clock:  deps.Clock,
				Logger: deps.Logger,
			},
			GetUser: queries.GetUserUseCase{
				Users: deps.Users,
			},
			ListUsers: queries.ListUsersUseCase{
				Users:    deps.Users,
				PageSize: deps.PageSize,
			},
			Resolver: resolver,
			Logger:   deps.Logger,
		},
		Authority: queries.AuthorityUseCase{
			Users: deps.Users,
		},
		Root: commands.ReconcileRootUseCase{
			Users:  deps.Users,
			Hasher: deps.Hasher,
			Clock:  deps.Clock,
			IDGen:  deps.IDGen,
			Logger: deps.Logger,
		},
		IssueToken: commands.IssueTokenUseCase{
			Users:  deps.Users,
			Tokens: deps.Tokens,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module to an in-memory store, a minimum-cost
// bcrypt hasher and a JWT service keyed with a random per-instance secret.
func NewInMemoryModule(seed []entities.User, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	secret := make([]byte, tokenadapter.MinSecretLength)
	if _, err := rand.Read(secret); err != nil {
		panic(fmt.Sprintf("generate in-memory jwt secret: %v", err))
	}
	tokens, err := tokenadapter.NewJWTService(secret, "herculaneum-transcriptor", time.Hour, store)
	if err != nil {
		panic(fmt.Sprintf("build in-memory jwt service: %v", err))
	}
	module := NewModule(Dependencies{
		Users:    store,
		Hasher:   credentials.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:   tokens,
		Clock:    store,
		IDGen:    store,
		PageSize: 20,
		Logger:   logger,
	})
	module.Store = store
	return module
}
