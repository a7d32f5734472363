package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskforge/taskforge/internal/authz"
	"github.com/taskforge/taskforge/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskRepositoryTestSuite defines the test suite for TaskRepository
type TaskRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo TaskRepository
}

// SetupTest runs before each test
func (suite *TaskRepositoryTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.Task{})
	suite.Require().NoError(err)

	suite.repo = NewTaskRepository(suite.db)
}

// TearDownTest runs after each test
func (suite *TaskRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskRepositoryTestSuite) createTask(title string, creator models.PrincipalRef, assignedTo *uint64, status models.TaskStatus) *models.Task {
	task := &models.Task{
		Title:        title,
		Description:  "Test Description",
		DueDate:      time.Now().Add(24 * time.Hour),
		Status:       status,
		Priority:     models.TaskPriorityMedium,
		CreatorID:    creator.ID,
		CreatorModel: creator.Model,
		AssignedTo:   assignedTo,
	}
	suite.db.Create(task)
	return task
}

func ptr(id uint64) *uint64 { return &id }

// TestList_AllScope tests the unrestricted scope
func (suite *TaskRepositoryTestSuite) TestList_AllScope() {
	creator := models.PrincipalRef{ID: 1, Model: models.ModelManager}
	suite.createTask("Task 1", creator, nil, models.TaskStatusPending)
	suite.createTask("Task 2", creator, ptr(5), models.TaskStatusCompleted)

	tasks, total, err := suite.repo.List(TaskFilter{Scope: authz.Scope{All: true}})

	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 2, total)
	assert.Len(suite.T(), tasks, 2)
}

// TestList_CreatorOrAssignee tests the scoped query: tasks created by the
// principal or assigned to any of the scope's assignees match.
func (suite *TaskRepositoryTestSuite) TestList_CreatorOrAssignee() {
	manager := models.PrincipalRef{ID: 1, Model: models.ModelManager}
	other := models.PrincipalRef{ID: 2, Model: models.ModelManager}
	suite.createTask("Mine", manager, nil, models.TaskStatusPending)
	suite.createTask("Team", other, ptr(7), models.TaskStatusPending)
	suite.createTask("Unrelated", other, ptr(8), models.TaskStatusPending)

	tasks, total, err := suite.repo.List(TaskFilter{Scope: authz.Scope{
		Creator:     manager,
		AssigneeIDs: []uint64{7},
	}})

	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 2, total)

	titles := make([]string, 0, len(tasks))
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	assert.ElementsMatch(suite.T(), []string{"Mine", "Team"}, titles)
}

// TestList_CreatorModelDisambiguates tests that a creator match requires the
// model tag, not just the numeric ID: manager 1 and user 1 are different
// principals.
func (suite *TaskRepositoryTestSuite) TestList_CreatorModelDisambiguates() {
	managerRef := models.PrincipalRef{ID: 1, Model: models.ModelManager}
	userRef := models.PrincipalRef{ID: 1, Model: models.ModelUser}
	suite.createTask("By Manager", managerRef, nil, models.TaskStatusPending)
	suite.createTask("By User", userRef, nil, models.TaskStatusPending)

	tasks, total, err := suite.repo.List(TaskFilter{Scope: authz.Scope{Creator: userRef}})

	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, total)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "By User", tasks[0].Title)
}

// TestList_AssignedToFilter tests the per-user filter on top of a scope
func (suite *TaskRepositoryTestSuite) TestList_AssignedToFilter() {
	creator := models.PrincipalRef{ID: 1, Model: models.ModelAdmin}
	suite.createTask("For 5", creator, ptr(5), models.TaskStatusPending)
	suite.createTask("For 6", creator, ptr(6), models.TaskStatusPending)

	tasks, total, err := suite.repo.List(TaskFilter{
		Scope:      authz.Scope{All: true},
		AssignedTo: ptr(5),
	})

	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, total)
	suite.Require().Len(tasks, 1)
	assert.Equal(suite.T(), "For 5", tasks[0].Title)
}

// TestList_Pagination tests that the total counts the whole scope while the
// page is limited
func (suite *TaskRepositoryTestSuite) TestList_Pagination() {
	creator := models.PrincipalRef{ID: 1, Model: models.ModelAdmin}
	for i := 0; i < 5; i++ {
		suite.createTask("Task", creator, nil, models.TaskStatusPending)
	}

	tasks, total, err := suite.repo.List(TaskFilter{
		Scope:    authz.Scope{All: true},
		Page:     2,
		PageSize: 2,
	})

	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 5, total)
	assert.Len(suite.T(), tasks, 2)
}

// TestDelete_IsTerminal tests that a deleted task is gone, not soft-deleted
func (suite *TaskRepositoryTestSuite) TestDelete_IsTerminal() {
	creator := models.PrincipalRef{ID: 1, Model: models.ModelUser}
	task := suite.createTask("Doomed", creator, nil, models.TaskStatusPending)

	err := suite.repo.Delete(task.ID)

	assert.NoError(suite.T(), err)

	var count int64
	suite.db.Unscoped().Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.Zero(suite.T(), count)
}

// TestCountByStatus tests the dashboard aggregate within a scope
func (suite *TaskRepositoryTestSuite) TestCountByStatus() {
	mine := models.PrincipalRef{ID: 1, Model: models.ModelUser}
	other := models.PrincipalRef{ID: 2, Model: models.ModelUser}
	suite.createTask("P1", mine, nil, models.TaskStatusPending)
	suite.createTask("P2", mine, nil, models.TaskStatusPending)
	suite.createTask("C1", mine, nil, models.TaskStatusCompleted)
	suite.createTask("Other", other, nil, models.TaskStatusInProgress)

	counts, err := suite.repo.CountByStatus(authz.Scope{Creator: mine})

	assert.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 3, counts.Total)
	assert.EqualValues(suite.T(), 2, counts.Pending)
	assert.EqualValues(suite.T(), 0, counts.InProgress)
	assert.EqualValues(suite.T(), 1, counts.Completed)
}

// TestSuite runs the test suite
func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}
