package services

import (
	"fmt"
	"testing"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/authz"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/utils"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/response"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Comment{},
		&models.RefreshToken{},
		&models.SystemLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()

	hashed, err := utils.HashPassword("password123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%d@example.com", role, testDBSeq*1000+int(nextUserSeq())),
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", name, err)
	}
	return user
}

var userSeq int

func nextUserSeq() int {
	userSeq++
	return userSeq
}

func seedProject(t *testing.T, db *gorm.DB, name string, creator *models.User, members ...*models.User) *models.Project {
	t.Helper()

	project := &models.Project{Name: name, CreatedBy: creator.ID}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to seed project %s: %v", name, err)
	}
	for _, m := range members {
		row := models.ProjectMember{ProjectID: project.ID, UserID: m.ID}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("failed to seed membership: %v", err)
		}
	}
	return project
}

func seedTask(t *testing.T, db *gorm.DB, project *models.Project, title string, status models.TaskStatus, creator *models.User, assignee *models.User) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:     title,
		Status:    status,
		ProjectID: project.ID,
		CreatedBy: creator.ID,
	}
	if assignee != nil {
		task.AssignedTo = &assignee.ID
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to seed task %s: %v", title, err)
	}
	return task
}

func actor(u *models.User) authz.Actor {
	return authz.Actor{ID: u.ID, Role: u.Role}
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	appErr, ok := err.(*response.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != status {
		t.Fatalf("expected status %d, got %d (%s)", status, appErr.HTTPStatus, appErr.Message)
	}
}
