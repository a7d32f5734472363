package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskforge/taskforge/internal/constants"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AuthServiceTestSuite defines the test suite for AuthService
type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

// SetupTest runs before each test
func (suite *AuthServiceTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Admin{},
		&models.Manager{},
		&models.User{},
	)
	suite.Require().NoError(err)

	suite.service = NewAuthService(repository.NewPrincipalRepository(suite.db), "test-secret")
}

// TearDownTest runs after each test
func (suite *AuthServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AuthServiceTestSuite) hash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), constants.BcryptCost)
	suite.Require().NoError(err)
	return string(hash)
}

func (suite *AuthServiceTestSuite) createUser(email, password string) *models.User {
	user := &models.User{
		Username:     "user_" + email,
		Email:        email,
		PasswordHash: suite.hash(password),
		Role:         models.RoleUser,
	}
	suite.db.Create(user)
	return user
}

func (suite *AuthServiceTestSuite) createManager(email, password string) *models.Manager {
	manager := &models.Manager{
		Username:     "manager_" + email,
		Email:        email,
		PasswordHash: suite.hash(password),
		Role:         models.RoleManager,
	}
	suite.db.Create(manager)
	return manager
}

// TestLogin_Success tests a full login and token round trip
func (suite *AuthServiceTestSuite) TestLogin_Success() {
	user := suite.createUser("user@example.com", "password123")

	result, err := suite.service.Login(LoginInput{
		Email:    "user@example.com",
		Password: "password123",
	})

	suite.Require().NoError(err)
	assert.NotEmpty(suite.T(), result.Token)
	assert.Equal(suite.T(), user.ID, result.Principal.ID)
	assert.Equal(suite.T(), models.RoleUser, result.Principal.Role)

	principal, err := suite.service.ParseToken(result.Token)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), user.ID, principal.ID)
	assert.Equal(suite.T(), models.RoleUser, principal.Role)
	assert.Equal(suite.T(), models.ModelUser, principal.Model)
}

// TestLogin_ManagerToken tests that a manager login carries the manager model
// tag
func (suite *AuthServiceTestSuite) TestLogin_ManagerToken() {
	manager := suite.createManager("manager@example.com", "password123")

	result, err := suite.service.Login(LoginInput{
		Email:    "manager@example.com",
		Password: "password123",
	})

	suite.Require().NoError(err)

	principal, err := suite.service.ParseToken(result.Token)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), manager.ID, principal.ID)
	assert.Equal(suite.T(), models.ModelManager, principal.Model)
}

// TestLogin_WrongPassword tests that a wrong password is indistinguishable
// from an unknown email
func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	suite.createUser("user@example.com", "password123")

	_, err := suite.service.Login(LoginInput{
		Email:    "user@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

// TestLogin_UnknownEmail tests login with an email not in any table
func (suite *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	_, err := suite.service.Login(LoginInput{
		Email:    "nobody@example.com",
		Password: "password123",
	})

	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

// TestParseToken_Garbage tests parsing a malformed token
func (suite *AuthServiceTestSuite) TestParseToken_Garbage() {
	_, err := suite.service.ParseToken("not.a.token")

	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}

// TestParseToken_WrongSecret tests that a token signed with another secret is
// rejected
func (suite *AuthServiceTestSuite) TestParseToken_WrongSecret() {
	suite.createUser("user@example.com", "password123")

	other := NewAuthService(repository.NewPrincipalRepository(suite.db), "other-secret")
	result, err := other.Login(LoginInput{
		Email:    "user@example.com",
		Password: "password123",
	})
	suite.Require().NoError(err)

	_, err = suite.service.ParseToken(result.Token)
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}

// TestParseToken_ModelRoleMismatch tests that a token whose model tag does
// not agree with its role is rejected even when correctly signed
func (suite *AuthServiceTestSuite) TestParseToken_ModelRoleMismatch() {
	claims := &Claims{
		ID:    1,
		Role:  string(models.RoleUser),
		Model: string(models.ModelManager),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(constants.TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	suite.Require().NoError(err)

	_, err = suite.service.ParseToken(token)
	assert.ErrorIs(suite.T(), err, ErrInvalidToken)
}

// TestSuite runs the test suite
func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
