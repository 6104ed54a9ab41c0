package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor used by HashPassword
	BcryptCost = 10

	// RoleAdmin is the only role issued by the admin login
	RoleAdmin = "admin"

	// AccessTokenExpiration is used when no expiry is configured
	AccessTokenExpiration = 15 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAdminDisabled      = errors.New("admin access is not configured")
)

// Claims represents the JWT claims
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AdminService authenticates the store administrator
type AdminService interface {
	Login(password string) (accessToken string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type adminService struct {
	passwordHash string
	jwtSecret    string
	expiry       time.Duration
	now          func() time.Time
}

// NewAdminService creates a new instance of AdminService. An empty password hash
// or secret disables login.
func NewAdminService(passwordHash, jwtSecret string, expiry time.Duration) AdminService {
	if expiry <= 0 {
		expiry = AccessTokenExpiration
	}
	return &adminService{
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		expiry:       expiry,
		now:          time.Now,
	}
}

// Login verifies the admin password and issues an access token
func (s *adminService) Login(password string) (string, time.Time, error) {
	if s.passwordHash == "" || s.jwtSecret == "" {
		return "", time.Time{}, ErrAdminDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   RoleAdmin,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *adminService) ValidateToken(tokenString string) (*Claims, error) {
	if s.jwtSecret == "" {
		return nil, ErrAdminDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword hashes a password with bcrypt, for producing ADMIN_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
