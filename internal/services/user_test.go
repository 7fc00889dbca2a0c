package services

import (
	"net/http"
	"testing"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/utils"
)

func TestUserCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	cases := []struct {
		name string
		req  CreateUserRequest
	}{
		{"email without at sign", CreateUserRequest{Name: "A", Email: "not-an-email", Password: "secret1", Role: models.RoleDeveloper}},
		{"short password", CreateUserRequest{Name: "A", Email: "a@example.com", Password: "abc", Role: models.RoleDeveloper}},
		{"unknown role", CreateUserRequest{Name: "A", Email: "a@example.com", Password: "secret1", Role: "SUPERUSER"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(&tc.req)
			wantStatus(t, err, http.StatusBadRequest)
		})
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	req := CreateUserRequest{Name: "A", Email: "dup@example.com", Password: "secret1", Role: models.RoleDeveloper}
	if _, err := svc.Create(&req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(&req)
	wantStatus(t, err, http.StatusBadRequest)
}

func TestUserCreate_HashesPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Create(&CreateUserRequest{Name: "A", Email: "a@example.com", Password: "secret1", Role: models.RoleClient})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if user.Password == "secret1" {
		t.Error("password stored in plaintext")
	}
	if !utils.CheckPassword("secret1", user.Password) {
		t.Error("stored hash does not verify")
	}
}

func TestUserAdminUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	u := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	name := "Dana Developer"
	role := models.RoleTechLead
	updated, err := svc.AdminUpdate(u.ID, &AdminUpdateUserRequest{Name: &name, Role: &role})
	if err != nil {
		t.Fatalf("admin update failed: %v", err)
	}
	if updated.Name != name || updated.Role != models.RoleTechLead {
		t.Errorf("update not applied: %+v", updated)
	}

	short := "abc"
	_, err = svc.AdminUpdate(u.ID, &AdminUpdateUserRequest{Password: &short})
	wantStatus(t, err, http.StatusBadRequest)

	bad := models.Role("SUPERUSER")
	_, err = svc.AdminUpdate(u.ID, &AdminUpdateUserRequest{Role: &bad})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.AdminUpdate(9999, &AdminUpdateUserRequest{Name: &name})
	wantStatus(t, err, http.StatusNotFound)
}

func TestUserSelfUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	u := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	name := "Dana D."
	pw := "newsecret"
	updated, err := svc.SelfUpdate(u.ID, &SelfUpdateRequest{Name: &name, Password: &pw})
	if err != nil {
		t.Fatalf("self update failed: %v", err)
	}
	if updated.Name != name {
		t.Errorf("name not applied: %+v", updated)
	}
	if !utils.CheckPassword(pw, updated.Password) {
		t.Error("new password does not verify")
	}

	_, err = svc.SelfUpdate(u.ID, &SelfUpdateRequest{})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestUserDelete_Cascade(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	pm := seedUser(t, db, "Paula PM", models.RoleProjectManager)
	dev := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	// A project the PM created, with a task assigned to the dev and a
	// comment by the dev.
	project := seedProject(t, db, "Apollo", pm, dev)
	task := seedTask(t, db, project, "Build API", models.TaskStatusTodo, pm, dev)
	comment := models.Comment{Content: "note", ProjectID: &project.ID, TaskID: &task.ID, CreatedBy: dev.ID}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}

	// An unrelated project where the dev is only an assignee.
	other := seedProject(t, db, "Borealis", pm, dev)
	otherTask := seedTask(t, db, other, "Design schema", models.TaskStatusTodo, pm, dev)

	// Deleting the dev nullifies assignments and removes their comments
	// and memberships, but keeps the projects and tasks.
	if err := svc.Delete(dev.ID); err != nil {
		t.Fatalf("delete dev failed: %v", err)
	}

	var reloaded models.Task
	if err := db.First(&reloaded, otherTask.ID).Error; err != nil {
		t.Fatalf("assigned task should survive: %v", err)
	}
	if reloaded.AssignedTo != nil {
		t.Error("assignment should be cleared")
	}
	var comments, memberships int64
	db.Model(&models.Comment{}).Where("created_by = ?", dev.ID).Count(&comments)
	db.Model(&models.ProjectMember{}).Where("user_id = ?", dev.ID).Count(&memberships)
	if comments != 0 || memberships != 0 {
		t.Errorf("dev rows left behind: comments=%d memberships=%d", comments, memberships)
	}

	// Deleting the PM removes their projects and everything under them.
	if err := svc.Delete(pm.ID); err != nil {
		t.Fatalf("delete pm failed: %v", err)
	}
	var projects, tasks int64
	db.Model(&models.Project{}).Count(&projects)
	db.Model(&models.Task{}).Count(&tasks)
	if projects != 0 || tasks != 0 {
		t.Errorf("pm cascade left rows behind: projects=%d tasks=%d", projects, tasks)
	}

	err := svc.Delete(9999)
	wantStatus(t, err, http.StatusNotFound)
}
