package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TeamServiceTestSuite defines the test suite for TeamService
type TeamServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TeamService
}

// SetupTest runs before each test
func (suite *TeamServiceTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Manager{},
		&models.User{},
		&models.TeamMember{},
	)
	suite.Require().NoError(err)

	suite.service = NewTeamService(repository.NewTeamRepository(suite.db))
}

// TearDownTest runs after each test
func (suite *TeamServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TeamServiceTestSuite) createManager(email string) *models.Manager {
	manager := &models.Manager{Username: "manager_" + email, Email: email, PasswordHash: "x", Role: models.RoleManager}
	suite.db.Create(manager)
	return manager
}

func (suite *TeamServiceTestSuite) createUser(email string) *models.User {
	user := &models.User{Username: "user_" + email, Email: email, PasswordHash: "x", Role: models.RoleUser}
	suite.db.Create(user)
	return user
}

// TestTeamOf_ConsistentRelation tests the read path over a healthy relation
func (suite *TeamServiceTestSuite) TestTeamOf_ConsistentRelation() {
	manager := suite.createManager("manager@example.com")
	user1 := suite.createUser("user1@example.com")
	user2 := suite.createUser("user2@example.com")
	suite.Require().NoError(suite.service.Assign(user1.ID, manager.ID))
	suite.Require().NoError(suite.service.Assign(user2.ID, manager.ID))

	team, err := suite.service.TeamOf(manager.ID)

	assert.NoError(suite.T(), err)
	assert.ElementsMatch(suite.T(), []uint64{user1.ID, user2.ID}, team)
}

// TestTeamOf_DriftedRelationReturnsUnion tests the degraded read: when the
// pointer and roster sides disagree the union is returned instead of an error
func (suite *TeamServiceTestSuite) TestTeamOf_DriftedRelationReturnsUnion() {
	manager := suite.createManager("manager@example.com")
	rostered := suite.createUser("rostered@example.com")
	pointed := suite.createUser("pointed@example.com")

	// Simulate a torn write: one user only on the roster, one only via the
	// pointer.
	suite.db.Create(&models.TeamMember{ManagerID: manager.ID, UserID: rostered.ID})
	suite.db.Model(&models.User{}).Where("id = ?", pointed.ID).Update("manager_id", manager.ID)

	team, err := suite.service.TeamOf(manager.ID)

	assert.NoError(suite.T(), err)
	assert.ElementsMatch(suite.T(), []uint64{rostered.ID, pointed.ID}, team)
}

// TestAssign_UnknownPrincipal tests the not-found mapping
func (suite *TeamServiceTestSuite) TestAssign_UnknownPrincipal() {
	manager := suite.createManager("manager@example.com")

	err := suite.service.Assign(9999, manager.ID)

	assert.ErrorIs(suite.T(), err, ErrPrincipalNotFound)
}

// TestRemoveManager_NotFound tests removing a missing manager
func (suite *TeamServiceTestSuite) TestRemoveManager_NotFound() {
	err := suite.service.RemoveManager(9999)

	assert.ErrorIs(suite.T(), err, ErrPrincipalNotFound)
}

// TestSuite runs the test suite
func TestTeamServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TeamServiceTestSuite))
}
