// Package auth issues and verifies the session tokens handed out after a
// successful launch. Sessions are stateless JWTs carried in a cookie; the
// bound LTI context travels inside the token, so permission scoping
// survives without server-side session storage.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type SessionClaims struct {
	UserID       uint   `json:"user_id"`
	LTIContextID uint   `json:"lti_context_id"`
	ConsumerSlug string `json:"consumer_slug"`
	jwt.RegisteredClaims
}

type SessionService struct {
	secret     []byte
	expMinutes int
	now        func() time.Time
}

func NewSessionService(secret string, expMinutes int) *SessionService {
	return &SessionService{
		secret:     []byte(secret),
		expMinutes: expMinutes,
		now:        time.Now,
	}
}

// Generate signs a session for a launch-authenticated user. The LTI
// context id scopes every later permission check; relaunching into a
// different context replaces the session wholesale.
func (s *SessionService) Generate(userID, ltiContextID uint, consumerSlug string) (string, error) {
	now := s.now().UTC()
	claims := &SessionClaims{
		UserID:       userID,
		LTIContextID: ltiContextID,
		ConsumerSlug: consumerSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.expMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

func (s *SessionService) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))

	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}
