package httpserver

import (
	"net/http"
	"strings"

	identityv1 "github.com/MF-patino/HerculaneumTranscriptor/contracts/identity/v1"
)

// authenticate resolves the bearer token to a principal and stores it on the
// request context. It never rejects: a missing, malformed or unresolvable
// token yields the anonymous principal and each operation decides.
func (s *Server) authenticate(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := identityv1.Anonymous()
		if token, ok := bearerToken(r); ok {
			principal = s.accounts.Handler.ResolvePrincipal(r.Context(), token)
		}
		next(w, r.WithContext(identityv1.WithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func principalFrom(r *http.Request) identityv1.Principal {
	return identityv1.PrincipalFromContext(r.Context())
}
