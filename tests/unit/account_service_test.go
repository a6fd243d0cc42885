package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	account "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/application/commands"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/entities"
	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/domain/errors"
	httptransport "github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/transport/http"
	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

var accountEpoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func registerUser(t *testing.T, module account.Module, username string) httptransport.AuthResponse {
	t.Helper()
	resp, err := module.Handler.RegisterHandler(context.Background(), httptransport.RegisterRequest{
		Username:  username,
		Password:  "papyrus-" + username,
		FirstName: "First " + username,
		LastName:  "Last",
		Contact:   username + "@example.org",
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", username, err)
	}
	return resp
}

func newAccountFixture(t *testing.T) account.Module {
	t.Helper()
	module := account.NewInMemoryModule(nil, nil)
	module.Store.SetNow(accountEpoch)
	if _, err := module.Root.Execute(context.Background(), commands.ReconcileRootCommand{
		Username: "curator",
		Password: "root-password",
	}); err != nil {
		t.Fatalf("reconcile root failed: %v", err)
	}
	return module
}

func principalFor(t *testing.T, module account.Module, token string) identityv1.Principal {
	t.Helper()
	principal := module.Handler.ResolvePrincipal(context.Background(), token)
	if !principal.Authenticated {
		t.Fatalf("expected token to resolve to an authenticated principal")
	}
	return principal
}

func TestRegisterLoginAndResolve(t *testing.T) {
	module := newAccountFixture(t)
	ctx := context.Background()

	registered := registerUser(t, module, "livia")
	if registered.User.Permissions != "read" {
		t.Fatalf("expected new accounts to get read tier, got %s", registered.User.Permissions)
	}
	principal := principalFor(t, module, registered.Token)
	if principal.Username != "livia" || principal.Tier != identityv1.TierRead {
		t.Fatalf("unexpected principal %+v", principal)
	}

	if _, err := module.Handler.RegisterHandler(ctx, httptransport.RegisterRequest{Username: "livia", Password: "another-pass"}); !errors.Is(err, domainerrors.ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}

	login, err := module.Handler.LoginHandler(ctx, httptransport.LoginRequest{Username: "livia", Password: "papyrus-livia"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if principalFor(t, module, login.Token).UserID != principal.UserID {
		t.Fatalf("expected login token to resolve to the registered account")
	}

	for _, req := range []httptransport.LoginRequest{
		{Username: "livia", Password: "wrong-password"},
		{Username: "nobody", Password: "papyrus-livia"},
	} {
		if _, err := module.Handler.LoginHandler(ctx, req); !errors.Is(err, domainerrors.ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials for %s, got %v", req.Username, err)
		}
	}
}

func TestTokenExpiresAfterTTL(t *testing.T) {
	module := newAccountFixture(t)
	token := registerUser(t, module, "marcus").Token

	module.Store.SetNow(accountEpoch.Add(time.Hour - time.Second))
	if !module.Handler.ResolvePrincipal(context.Background(), token).Authenticated {
		t.Fatalf("expected token valid just before expiry")
	}
	module.Store.SetNow(accountEpoch.Add(time.Hour + time.Second))
	if module.Handler.ResolvePrincipal(context.Background(), token).Authenticated {
		t.Fatalf("expected token rejected after expiry")
	}
}

func TestResolvePrincipalFailsClosed(t *testing.T) {
	module := newAccountFixture(t)
	ctx := context.Background()
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if module.Handler.ResolvePrincipal(ctx, token).Authenticated {
			t.Fatalf("expected anonymous principal for %q", token)
		}
	}

	resp := registerUser(t, module, "julia")
	principal := principalFor(t, module, resp.Token)
	if err := module.Handler.DeleteUserHandler(ctx, principal, "julia"); err != nil {
		t.Fatalf("self delete failed: %v", err)
	}
	if module.Handler.ResolvePrincipal(ctx, resp.Token).Authenticated {
		t.Fatalf("expected token of deleted account to resolve anonymous")
	}
}

func TestUserAuthorityPolicy(t *testing.T) {
	module := newAccountFixture(t)
	ctx := context.Background()
	alice := principalFor(t, module, registerUser(t, module, "alice").Token)
	registerUser(t, module, "bruno")
	root := principalFor(t, module, mustIssue(t, module, "curator"))

	admin := alice
	if _, err := module.Handler.ChangePermissionsHandler(ctx, root, "alice", httptransport.ChangePermissionsRequest{Permissions: "admin"}); err != nil {
		t.Fatalf("promote alice failed: %v", err)
	}
	admin.Tier = identityv1.TierAdmin

	cases := []struct {
		name      string
		principal identityv1.Principal
		target    string
		want      bool
	}{
		{"anonymous", identityv1.Anonymous(), "bruno", false},
		{"admin over user", admin, "bruno", true},
		{"admin over root", admin, "curator", false},
		{"root over root", root, "curator", false},
		{"root over admin", root, "alice", true},
		{"missing target", alice, "ghost", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := module.Authority.HasAuthorityOver(ctx, tc.principal, tc.target)
			if err != nil {
				t.Fatalf("authority check failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestManageUsers(t *testing.T) {
	module := newAccountFixture(t)
	ctx := context.Background()
	alice := principalFor(t, module, registerUser(t, module, "alice").Token)
	registerUser(t, module, "bruno")
	root := principalFor(t, module, mustIssue(t, module, "curator"))

	if _, err := module.Handler.UpdateUserHandler(ctx, alice, "bruno", httptransport.UpdateUserRequest{Username: "bruno", FirstName: "x"}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden editing another user, got %v", err)
	}
	if _, err := module.Handler.UpdateUserHandler(ctx, alice, "alice", httptransport.UpdateUserRequest{Username: "bruno"}); !errors.Is(err, domainerrors.ErrUsernameTaken) {
		t.Fatalf("expected username taken on rename, got %v", err)
	}
	renamed, err := module.Handler.UpdateUserHandler(ctx, alice, "alice", httptransport.UpdateUserRequest{Username: "aelia", FirstName: "Aelia"})
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if renamed.Username != "aelia" {
		t.Fatalf("expected renamed account, got %s", renamed.Username)
	}

	newPassword := "new-papyrus-pass"
	if _, err := module.Handler.UpdateUserHandler(ctx, root, "aelia", httptransport.UpdateUserRequest{Password: &newPassword}); err != nil {
		t.Fatalf("root password reset failed: %v", err)
	}
	if _, err := module.Handler.LoginHandler(ctx, httptransport.LoginRequest{Username: "aelia", Password: newPassword}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	if _, err := module.Handler.ChangePermissionsHandler(ctx, alice, "bruno", httptransport.ChangePermissionsRequest{Permissions: "write"}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected read tier to be refused tier changes, got %v", err)
	}
	if _, err := module.Handler.ChangePermissionsHandler(ctx, root, "bruno", httptransport.ChangePermissionsRequest{Permissions: "root"}); !errors.Is(err, domainerrors.ErrInvalidTier) {
		t.Fatalf("expected root tier to be unassignable, got %v", err)
	}
	if _, err := module.Handler.ChangePermissionsHandler(ctx, identityv1.Anonymous(), "bruno", httptransport.ChangePermissionsRequest{Permissions: "write"}); !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if err := module.Handler.DeleteUserHandler(ctx, root, "curator"); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected root account to be undeletable, got %v", err)
	}
}

func TestListUsersPaging(t *testing.T) {
	module := account.NewInMemoryModule(nil, nil)
	ctx := context.Background()
	var first identityv1.Principal
	for i, name := range []string{"a1", "a2", "a3", "a4", "a5"} {
		module.Store.SetNow(accountEpoch.Add(time.Duration(i) * time.Minute))
		resp := registerUser(t, module, name)
		if i == 0 {
			first = principalFor(t, module, resp.Token)
		}
	}
	module.Store.SetNow(accountEpoch.Add(time.Hour / 2))

	page, err := module.Handler.ListUsersHandler(ctx, first, 0)
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(page.Items) != 5 || page.Items[0].Username != "a1" {
		t.Fatalf("unexpected first page %+v", page.Items)
	}
	if _, err := module.Handler.ListUsersHandler(ctx, first, -1); !errors.Is(err, domainerrors.ErrInvalidPageIndex) {
		t.Fatalf("expected invalid index, got %v", err)
	}
	if _, err := module.Handler.ListUsersHandler(ctx, identityv1.Anonymous(), 0); !errors.Is(err, domainerrors.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestReconcileRootIsIdempotentAndTracksChanges(t *testing.T) {
	module := account.NewInMemoryModule(nil, nil)
	module.Store.SetNow(accountEpoch)
	ctx := context.Background()

	created, err := module.Root.Execute(ctx, commands.ReconcileRootCommand{Username: "curator", Password: "root-password"})
	if err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}
	if created.Action != entities.RootCreated || created.Before != nil {
		t.Fatalf("expected creation, got %+v", created)
	}

	unchanged, err := module.Root.Execute(ctx, commands.ReconcileRootCommand{Username: "curator", Password: "root-password"})
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if unchanged.Action != entities.RootUnchanged || unchanged.After.UserID != created.After.UserID {
		t.Fatalf("expected unchanged root, got %+v", unchanged)
	}

	updated, err := module.Root.Execute(ctx, commands.ReconcileRootCommand{Username: "director", Password: "rotated-password"})
	if err != nil {
		t.Fatalf("rotation reconcile failed: %v", err)
	}
	if updated.Action != entities.RootUpdated || updated.Before == nil || updated.Before.Username != "curator" || updated.After.Username != "director" {
		t.Fatalf("expected rename with before/after state, got %+v", updated)
	}
	if _, err := module.Handler.LoginHandler(ctx, httptransport.LoginRequest{Username: "director", Password: "rotated-password"}); err != nil {
		t.Fatalf("login with rotated root failed: %v", err)
	}

	registerUser(t, module, "livia")
	if _, err := module.Root.Execute(ctx, commands.ReconcileRootCommand{Username: "livia", Password: "x-password"}); !errors.Is(err, domainerrors.ErrUsernameTaken) {
		t.Fatalf("expected root rename onto a regular account to fail, got %v", err)
	}
	if _, err := module.Root.Execute(ctx, commands.ReconcileRootCommand{}); !errors.Is(err, domainerrors.ErrRootNotConfigured) {
		t.Fatalf("expected root not configured, got %v", err)
	}
}

func mustIssue(t *testing.T, module account.Module, username string) string {
	t.Helper()
	result, err := module.IssueToken.Execute(context.Background(), username)
	if err != nil {
		t.Fatalf("issue token for %s failed: %v", username, err)
	}
	return result.Token
}
