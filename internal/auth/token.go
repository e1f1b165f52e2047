package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrAuthentication is returned for every handshake credential failure:
// missing token, malformed token, bad signature, expiry. The message matches
// what clients display in their connection-error callback.
var ErrAuthentication = errors.New("Authentication error")

// Identity is the authenticated caller extracted from a verified token.
// It is attached to a connection once, at handshake, and never re-validated
// for the lifetime of that connection.
type Identity struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

// Claims carries the identity inside a signed token.
type Claims struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens against a shared secret.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate signs a token embedding the given identity.
func (t *TokenService) Generate(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:         id.ID,
		Name:           id.Name,
		ProfilePicture: id.ProfilePicture,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify validates the credential and returns the embedded identity.
// Any failure collapses to ErrAuthentication; callers must reject the
// connection before any event handler runs.
func (t *TokenService) Verify(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrAuthentication
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAuthentication
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, ErrAuthentication
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrAuthentication
	}

	return &Identity{
		ID:             claims.UserID,
		Name:           claims.Name,
		ProfilePicture: claims.ProfilePicture,
	}, nil
}
