// Package auth signs in café staff and checks their tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
	ErrForbidden          = errors.New("auth: role not allowed")
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDelivery Role = "delivery"
)

const issuer = "ajabo"

// Account is a staff login. PasswordHash is a bcrypt hash.
type Account struct {
	Username     string
	PasswordHash string
	Role         Role
	// DisplayName is recorded as the courier on orders a delivery account moves.
	DisplayName string
}

type Claims struct {
	Role        Role   `json:"role"`
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Allows reports whether the claims carry one of the roles.
func (c *Claims) Allows(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

type Service struct {
	accounts map[string]Account
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewService(accounts []Account, secret string, ttl time.Duration) (*Service, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: signing secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	byName := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		if a.Role != RoleAdmin && a.Role != RoleDelivery {
			return nil, fmt.Errorf("auth: account %q has unknown role %q", a.Username, a.Role)
		}
		byName[strings.ToLower(a.Username)] = a
	}
	return &Service{accounts: byName, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// HashPassword produces the bcrypt hash stored in configuration.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type LoginResult struct {
	Token     string
	Role      Role
	ExpiresAt time.Time
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	_ = ctx
	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Role:        acc.Role,
		DisplayName: acc.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   acc.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return &LoginResult{Token: token, Role: acc.Role, ExpiresAt: exp}, nil
}

// Verify parses a bearer token and returns its claims.
func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
