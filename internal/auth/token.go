package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for tokens that fail parsing or signature
	// checks, or that lack a subject.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken is returned for well-formed tokens past their expiry.
	ErrExpiredToken = errors.New("session token expired")
)

// Claims is the session token payload. Providers disagree on the name
// claims, so both the first_name/last_name and OIDC spellings are accepted.
type Claims struct {
	jwt.RegisteredClaims
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
}

// Identity converts verified claims into the caller identity.
func (c *Claims) Identity() *Identity {
	id := &Identity{
		ExternalID: c.Subject,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
	}
	if id.FirstName == "" {
		id.FirstName = c.GivenName
	}
	if id.LastName == "" {
		id.LastName = c.FamilyName
	}
	return id
}

// Verifier validates HS256 session tokens.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier. Issuer and audience are only enforced when
// non-empty.
func NewVerifier(secret, issuer, audience string, leeway time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify parses the token and returns the caller it asserts.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims.Identity(), nil
}

// TokenOptions shapes a token minted by IssueToken.
type TokenOptions struct {
	Issuer   string
	Audience string
	TTL      time.Duration
}

// IssueToken signs a session token for id. It stands in for the identity
// provider in development and tests.
func IssueToken(secret string, id Identity, opts TokenOptions) (string, error) {
	now := time.Now()
	ttl := opts.TTL
	if ttl == 0 {
		ttl = time.Hour
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ExternalID,
			Issuer:    opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		FirstName: id.FirstName,
		LastName:  id.LastName,
	}
	if opts.Audience != "" {
		claims.Audience = jwt.ClaimStrings{opts.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return tokenString, nil
}
