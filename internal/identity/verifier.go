package identity

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"planboard.app/server/core/config"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
	ErrExpiredToken = errors.New("bearer token expired")
)

// Claims is the verified identity of a caller. Profile fields are present
// only when the identity provider embeds them in the session token.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

type Verifier interface {
	Verify(token string) (Claims, error)
}

type rsaVerifier struct {
	key    *rsa.PublicKey
	parser *jwt.Parser
}

// NewVerifier builds an RS256 verifier from the configured PEM public key.
func NewVerifier(cfg config.IdentityConfig) (Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("parse identity public key: %w", err)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &rsaVerifier{key: key, parser: jwt.NewParser(opts...)}, nil
}

func (v *rsaVerifier) Verify(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrMissingToken
	}

	var parsed sessionClaims
	_, err := v.parser.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return Claims{}, mapJWTError(err)
	}
	if parsed.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return Claims{
		Subject: parsed.Subject,
		Email:   parsed.Email,
		Name:    parsed.Name,
		Picture: parsed.Picture,
	}, nil
}

func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpiredToken
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
