package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

// TokenIssuer identifies tokens issued by this service.
const TokenIssuer = "tenant-site-backend"

// Claims are the JWT claims of an admin session.
type Claims struct {
	jwt.RegisteredClaims
	Tenant string `json:"tenant"`
	Role   string `json:"role"`
}

// TenantID parses the tenant claim.
func (c *Claims) TenantID() (uuid.UUID, error) {
	return uuid.Parse(c.Tenant)
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// AuthService logs tenant users in and verifies their HS256 session tokens.
type AuthService struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users UserStore, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks the credentials of a user of tenant and returns a signed token.
func (s *AuthService) Login(ctx context.Context, tenant *models.Tenant, email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, tenant.ID, normalizeEmail(email))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		// keep timing close to the wrong-password path
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1bRZ8sVJ2gBqvBfY0UGk5XK"), []byte(password))
		return "", nil, errs.NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errs.NewInvalidCredentialsError()
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	log.Info().Str("tenant", tenant.Slug).Str("userId", user.ID.String()).Msg("User logged in")
	return token, user, nil
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Tenant: user.TenantID.String(),
		Role:   user.Role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken verifies the signature, issuer and expiry of a session token.
func (s *AuthService) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(TokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.NewTokenExpiredError()
		}
		log.Debug().Err(err).Msg("JWT parse error")
		return nil, errs.NewInvalidTokenError()
	}
	if !parsed.Valid {
		return nil, errs.NewInvalidTokenError()
	}
	if _, err := claims.TenantID(); err != nil {
		return nil, errs.NewInvalidTokenError()
	}
	if _, err := claims.UserID(); err != nil {
		return nil, errs.NewInvalidTokenError()
	}
	return claims, nil
}
