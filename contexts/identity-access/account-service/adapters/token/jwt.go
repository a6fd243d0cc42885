package tokenadapter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/identity-access/account-service/ports"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// MinSecretLength is the smallest accepted HMAC key, in bytes.
const MinSecretLength = 32

var allowedAlgorithms = []jose.SignatureAlgorithm{jose.HS256}

// JWTService issues HS256 compact JWTs carrying sub, iss, iat and exp.
type JWTService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  ports.Clock
	signer jose.Signer
}

func NewJWTService(secret []byte, issuer string, ttl time.Duration, clock ports.Clock) (*JWTService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	key := append([]byte(nil), secret...)
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("create jwt signer: %w", err)
	}
	return &JWTService{
		secret: key,
		issuer: strings.TrimSpace(issuer),
		ttl:    ttl,
		clock:  clock,
		signer: signer,
	}, nil
}

func (s *JWTService) Issue(subjectID string) (string, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", errors.New("jwt subject is required")
	}
	now := s.now()
	claims := jwt.Claims{
		Subject:  subjectID,
		Issuer:   s.issuer,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.Signed(s.signer).Claims(claims).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize jwt: %w", err)
	}
	return token, nil
}

func (s *JWTService) Validate(token string) bool {
	_, ok := s.verify(token)
	return ok
}

func (s *JWTService) ExtractSubject(token string) string {
	claims, ok := s.verify(token)
	if !ok {
		return ""
	}
	return claims.Subject
}

func (s *JWTService) verify(token string) (jwt.Claims, bool) {
	parsed, err := jwt.ParseSigned(strings.TrimSpace(token), allowedAlgorithms)
	if err != nil {
		return jwt.Claims{}, false
	}
	var claims jwt.Claims
	if err := parsed.Claims(s.secret, &claims); err != nil {
		return jwt.Claims{}, false
	}
	if claims.Expiry == nil || strings.TrimSpace(claims.Subject) == "" {
		return jwt.Claims{}, false
	}
	expected := jwt.Expected{Issuer: s.issuer, Time: s.now()}
	if err := claims.ValidateWithLeeway(expected, 0); err != nil {
		return jwt.Claims{}, false
	}
	return claims, true
}

func (s *JWTService) now() time.Time {
	if s.clock != nil {
		return s.clock.Now().UTC()
	}
	return time.Now().UTC()
}

var _ ports.TokenService = (*JWTService)(nil)
