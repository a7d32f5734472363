package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskforge/taskforge/internal/authz"
	"github.com/taskforge/taskforge/internal/constants"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService authenticates principals against the directory and issues
// bearer tokens carrying {id, role, model}.
type AuthService struct {
	principalRepo repository.PrincipalRepository
	jwtSecret     []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(principalRepo repository.PrincipalRepository, jwtSecret string) *AuthService {
	return &AuthService{
		principalRepo: principalRepo,
		jwtSecret:     []byte(jwtSecret),
	}
}

// Claims is the token payload. The model tag travels with the ID because the
// ID alone does not identify a principal across the three tables.
type Claims struct {
	ID    uint64                `json:"id"`
	Role  string                `json:"role"`
	Model string                `json:"model"`
	jwt.RegisteredClaims
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the issued token plus the resolved principal.
type LoginResult struct {
	Token     string
	Principal repository.PrincipalRecord
}

// Login resolves the email through the directory (Admin -> Manager -> User),
// verifies the password and issues a signed token.
func (s *AuthService) Login(input LoginInput) (*LoginResult, error) {
	record, err := s.principalRepo.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to resolve principal: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := &Claims{
		ID:    record.ID,
		Role:  string(record.Role),
		Model: string(record.Model),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(constants.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResult{Token: token, Principal: *record}, nil
}

// ParseToken validates a bearer token and returns the principal it carries.
func (s *AuthService) ParseToken(tokenStr string) (authz.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return authz.Principal{}, ErrInvalidToken
	}

	principal := authz.Principal{
		ID:    claims.ID,
		Role:  models.Role(claims.Role),
		Model: models.PrincipalModel(claims.Model),
	}
	// The model tag must name a real table, and it must agree with the role:
	// a forged mismatch would let a token act in the wrong store.
	if !principal.Model.Valid() || principal.Model.Role() != principal.Role {
		return authz.Principal{}, ErrInvalidToken
	}

	return principal, nil
}
