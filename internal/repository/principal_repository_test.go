package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskforge/taskforge/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// PrincipalRepositoryTestSuite defines the test suite for PrincipalRepository
type PrincipalRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo PrincipalRepository
}

// SetupTest runs before each test
func (suite *PrincipalRepositoryTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Admin{},
		&models.Manager{},
		&models.User{},
		&models.TeamMember{},
	)
	suite.Require().NoError(err)

	suite.repo = NewPrincipalRepository(suite.db)
}

// TearDownTest runs after each test
func (suite *PrincipalRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *PrincipalRepositoryTestSuite) createAdmin(email string) *models.Admin {
	admin := &models.Admin{
		Username:     "admin_" + email,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         models.RoleAdmin,
	}
	suite.db.Create(admin)
	return admin
}

func (suite *PrincipalRepositoryTestSuite) createManager(email string) *models.Manager {
	manager := &models.Manager{
		Username:     "manager_" + email,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         models.RoleManager,
	}
	suite.db.Create(manager)
	return manager
}

func (suite *PrincipalRepositoryTestSuite) createUser(email string) *models.User {
	user := &models.User{
		Username:     "user_" + email,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
	}
	suite.db.Create(user)
	return user
}

// TestFindByEmail_User tests resolution against the user table
func (suite *PrincipalRepositoryTestSuite) TestFindByEmail_User() {
	user := suite.createUser("user@example.com")

	record, err := suite.repo.FindByEmail("user@example.com")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, record.ID)
	assert.Equal(suite.T(), models.RoleUser, record.Role)
	assert.Equal(suite.T(), models.ModelUser, record.Model)
}

// TestFindByEmail_Manager tests resolution against the manager table
func (suite *PrincipalRepositoryTestSuite) TestFindByEmail_Manager() {
	manager := suite.createManager("manager@example.com")

	record, err := suite.repo.FindByEmail("manager@example.com")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), manager.ID, record.ID)
	assert.Equal(suite.T(), models.RoleManager, record.Role)
	assert.Equal(suite.T(), models.ModelManager, record.Model)
}

// TestFindByEmail_AdminShadowsManagerAndUser tests the probe order: email
// uniqueness is per-table, so the same email can exist in all three tables
// and the admin record wins.
func (suite *PrincipalRepositoryTestSuite) TestFindByEmail_AdminShadowsManagerAndUser() {
	admin := suite.createAdmin("shared@example.com")
	suite.createManager("shared@example.com")
	suite.createUser("shared@example.com")

	record, err := suite.repo.FindByEmail("shared@example.com")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), admin.ID, record.ID)
	assert.Equal(suite.T(), models.ModelAdmin, record.Model)
}

// TestFindByEmail_ManagerShadowsUser tests that a manager record shadows a
// user record with the same email
func (suite *PrincipalRepositoryTestSuite) TestFindByEmail_ManagerShadowsUser() {
	manager := suite.createManager("shared@example.com")
	suite.createUser("shared@example.com")

	record, err := suite.repo.FindByEmail("shared@example.com")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), manager.ID, record.ID)
	assert.Equal(suite.T(), models.ModelManager, record.Model)
}

// TestFindByEmail_NotFound tests resolution of an unknown email
func (suite *PrincipalRepositoryTestSuite) TestFindByEmail_NotFound() {
	_, err := suite.repo.FindByEmail("nobody@example.com")

	assert.ErrorIs(suite.T(), err, gorm.ErrRecordNotFound)
}

// TestKeyedLookups_DisjointIDSpaces tests that the same numeric ID resolves
// to different principals depending on the table it is looked up in.
func (suite *PrincipalRepositoryTestSuite) TestKeyedLookups_DisjointIDSpaces() {
	manager := suite.createManager("manager@example.com")
	user := suite.createUser("user@example.com")
	suite.Require().Equal(manager.ID, user.ID)

	foundManager, err := suite.repo.FindManager(manager.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), manager.Email, foundManager.Email)

	foundUser, err := suite.repo.FindUser(user.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.Email, foundUser.Email)
}

// TestListManagers_PreloadsRoster tests that rosters come back with their
// user records
func (suite *PrincipalRepositoryTestSuite) TestListManagers_PreloadsRoster() {
	manager := suite.createManager("manager@example.com")
	user := suite.createUser("user@example.com")
	suite.db.Create(&models.TeamMember{ManagerID: manager.ID, UserID: user.ID})

	managers, err := suite.repo.ListManagers()

	assert.NoError(suite.T(), err)
	suite.Require().Len(managers, 1)
	suite.Require().Len(managers[0].Team, 1)
	assert.Equal(suite.T(), user.Email, managers[0].Team[0].User.Email)
}

// TestSuite runs the test suite
func TestPrincipalRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PrincipalRepositoryTestSuite))
}
