package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorizedIssuer is returned for tokens from issuers not in the JWKS map.
var ErrUnauthorizedIssuer = errors.New("unauthorized issuer")

// JWKSClientInterface validates bearer tokens.
type JWKSClientInterface interface {
	// ValidateToken verifies the signature, expiry, issuer and audience of a token.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
	// Close stops background key refresh.
	Close()
}

// JWKSConfig contains configuration for the JWKS client.
type JWKSConfig struct {
	// JWKSEndpoints maps issuer URLs to their JWKS endpoint URLs.
	// Only tokens from issuers in this map are accepted.
	JWKSEndpoints map[string]string
	// Audience, when set, must appear in the token's aud claim.
	Audience string
}

// JWKSClient validates RS256 tokens against per-issuer JWKS key sets,
// refreshed in the background by keyfunc.
type JWKSClient struct {
	endpoints map[string]keyfunc.Keyfunc
	parser    *jwt.Parser
	cancel    context.CancelFunc
}

// NewJWKSClient fetches the key set for every configured issuer.
// Key refresh runs until Close is called.
func NewJWKSClient(ctx context.Context, config *JWKSConfig) (*JWKSClient, error) {
	refreshCtx, cancel := context.WithCancel(ctx)

	client := &JWKSClient{
		endpoints: make(map[string]keyfunc.Keyfunc, len(config.JWKSEndpoints)),
		parser:    newParser(config.Audience),
		cancel:    cancel,
	}

	for issuer, jwksURL := range config.JWKSEndpoints {
		jwks, err := keyfunc.NewDefaultCtx(refreshCtx, []string{jwksURL})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create JWKS client for %s: %w", issuer, err)
		}
		client.endpoints[issuer] = jwks
	}

	return client, nil
}

func newParser(audience string) *jwt.Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return jwt.NewParser(opts...)
}

// ValidateToken validates a JWT and returns its claims.
func (c *JWKSClient) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := c.parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		claims, ok := token.Claims.(*Claims)
		if !ok {
			return nil, errors.New("invalid claims type")
		}

		jwks, exists := c.endpoints[claims.Issuer]
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrUnauthorizedIssuer, claims.Issuer)
		}
		return jwks.KeyfuncCtx(ctx)(token)
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	if claims.Subject == "" {
		return nil, errors.New("token validation failed: missing subject")
	}

	return claims, nil
}

// Close stops background refresh of every key set.
func (c *JWKSClient) Close() {
	c.cancel()
}

var _ JWKSClientInterface = (*JWKSClient)(nil)
