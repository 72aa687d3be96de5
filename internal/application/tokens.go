package application

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// stateClaims is the payload of the OAuth state parameter: an HMAC-signed,
// short-lived token carrying the acting user id. The signature makes the
// state tamper-evident; the nonce and expiry bound replay.
type stateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// stateTTL bounds how long a consent round-trip may take.
const stateTTL = 10 * time.Minute

// signState builds the state token for an authorization redirect. userID
// may be empty for a first-time connection.
func signState(secret []byte, userID string) (string, error) {
	now := time.Now()
	claims := stateClaims{
		Nonce: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign state token: %w", err)
	}
	return token, nil
}

// verifyState validates the state returned on callback and extracts the
// acting user id. Expired or tampered tokens are rejected.
func verifyState(secret []byte, state string) (string, error) {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("verify state token: %w", err)
	}
	return claims.Subject, nil
}

// sessionClaims is the application's own session token payload.
type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Session is the authenticated principal carried by a session token.
type Session struct {
	UserID string
	Email  string
}

// signSession issues the application session token returned to the
// frontend after a successful callback.
func signSession(secret []byte, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// VerifySession validates a session token and returns its principal.
func VerifySession(secret []byte, token string) (Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Session{}, fmt.Errorf("verify session token: %w", err)
	}
	return Session{UserID: claims.Subject, Email: claims.Email}, nil
}
