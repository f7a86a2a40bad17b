package helpers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier checks access tokens against the project's JWKS for
// asymmetric tokens and against the shared secret for HS256 tokens.
// Build it once at startup; the JWKS refreshes in the background.
type TokenVerifier struct {
	jwks   *keyfunc.JWKS
	secret []byte
	parser *jwt.Parser
}

// JWKSURL is where Supabase publishes its signing keys.
func JWKSURL(supabaseURL string) string {
	return strings.TrimRight(supabaseURL, "/") + "/auth/v1/.well-known/jwks.json"
}

// NewTokenVerifier loads the JWKS when supabaseURL is set. If that fails
// and a secret is configured, it carries on with HS256 only.
func NewTokenVerifier(ctx context.Context, supabaseURL, secret string, logger *slog.Logger) (*TokenVerifier, error) {
	v := &TokenVerifier{}
	methods := []string{}
	if secret != "" {
		v.secret = []byte(secret)
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}

	if supabaseURL != "" {
		jwks, err := keyfunc.Get(JWKSURL(supabaseURL), keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn("JWKS refresh failed", "error", err)
			},
		})
		switch {
		case err == nil:
			v.jwks = jwks
			methods = append(methods,
				jwt.SigningMethodRS256.Alg(),
				jwt.SigningMethodES256.Alg(),
			)
		case v.secret != nil:
			logger.Warn("JWKS unavailable, verifying HS256 tokens only", "error", err)
		default:
			return nil, fmt.Errorf("failed to load JWKS: %w", err)
		}
	}

	if len(methods) == 0 {
		return nil, errors.New("no token verification key configured")
	}
	v.parser = jwt.NewParser(
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	return v, nil
}

// NewHMACVerifier accepts only HS256 tokens signed with secret.
func NewHMACVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

func (v *TokenVerifier) key(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
		if v.secret == nil {
			return nil, errors.New("HS256 tokens are not accepted")
		}
		return v.secret, nil
	}
	if v.jwks == nil {
		return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
	}
	return v.jwks.Keyfunc(t)
}

func (v *TokenVerifier) Verify(tokenStr string) (*Claims, error) {
	token, err := v.parser.ParseWithClaims(tokenStr, &Claims{}, v.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (v *TokenVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}
