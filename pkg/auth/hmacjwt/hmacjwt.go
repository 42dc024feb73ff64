// Package hmacjwt provides a JWT authenticator for HS256-signed tokens
// with a shared secret. Suited for internal deployments where relais and
// its callers share configuration; for public identity providers a JWKS
// verifier would be needed instead.
package hmacjwt

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/tbuchner/relais/pkg/auth"
)

// Config holds the JWT authenticator configuration.
type Config struct {
	// Secret is the shared HMAC key. Required.
	Secret string

	// Issuer is the expected iss claim. If empty, issuer is not validated.
	Issuer string
}

// Authenticator validates HS256 JWT bearer tokens.
type Authenticator struct {
	secret []byte
	opts   []jwtlib.ParserOption
}

// New creates a JWT authenticator with the given configuration.
func New(cfg Config) *Authenticator {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"HS256"}),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(cfg.Issuer))
	}
	return &Authenticator{
		secret: []byte(cfg.Secret),
		opts:   opts,
	}
}

// Authenticate extracts a bearer token from the Authorization header and
// validates it as an HS256 JWT.
//
// Decision outcomes:
//   - Abstain: no Authorization header or not a Bearer scheme
//   - No: bearer token present but invalid (expired, wrong issuer, bad signature)
//   - Yes: valid JWT with populated Identity
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	tokenStr, ok := auth.BearerToken(r)
	if !ok {
		return auth.Result{Decision: auth.Abstain}
	}
	if tokenStr == "" {
		return auth.Result{Decision: auth.No, Err: fmt.Errorf("empty bearer token")}
	}

	token, err := jwtlib.Parse(tokenStr, func(*jwtlib.Token) (interface{}, error) {
		return a.secret, nil
	}, a.opts...)
	if err != nil {
		return auth.Result{
			Decision: auth.No,
			Err:      fmt.Errorf("invalid JWT: %w", err),
		}
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok || !token.Valid {
		return auth.Result{Decision: auth.No, Err: fmt.Errorf("invalid JWT claims")}
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return auth.Result{Decision: auth.No, Err: fmt.Errorf("JWT missing \"sub\" claim")}
	}

	return auth.Result{
		Decision: auth.Yes,
		Identity: &auth.Identity{
			Subject: subject,
			Scopes:  extractScopes(claims),
		},
	}
}

// extractScopes reads the scope claim, which can be a space-separated
// string or a JSON array.
func extractScopes(claims jwtlib.MapClaims) []string {
	val, ok := claims["scope"]
	if !ok {
		return nil
	}

	if s, ok := val.(string); ok {
		parts := strings.Fields(s)
		if len(parts) == 0 {
			return nil
		}
		return parts
	}

	if arr, ok := val.([]interface{}); ok {
		var scopes []string
		for _, item := range arr {
			if s, ok := item.(string); ok {
				scopes = append(scopes, s)
			}
		}
		return scopes
	}

	return nil
}
