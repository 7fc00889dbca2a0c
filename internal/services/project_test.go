package services

import (
	"net/http"
	"testing"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
)

func TestProjectCreate_RoleGate(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	pm := seedUser(t, db, "Paula PM", models.RoleProjectManager)
	dev := seedUser(t, db, "Dana Dev", models.RoleDeveloper)
	client := seedUser(t, db, "Carl Client", models.RoleClient)

	project, err := svc.Create(actor(pm), &CreateProjectRequest{Name: "Apollo"})
	if err != nil {
		t.Fatalf("project manager should create projects: %v", err)
	}
	if project.CreatedBy != pm.ID {
		t.Errorf("creator should be forced to the caller, got %d", project.CreatedBy)
	}

	_, err = svc.Create(actor(dev), &CreateProjectRequest{Name: "Borealis"})
	wantStatus(t, err, http.StatusForbidden)

	_, err = svc.Create(actor(client), &CreateProjectRequest{Name: "Borealis"})
	wantStatus(t, err, http.StatusForbidden)
}

func TestProjectCreate_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)
	admin := seedUser(t, db, "Admin", models.RoleAdmin)

	if _, err := svc.Create(actor(admin), &CreateProjectRequest{Name: "Apollo"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(actor(admin), &CreateProjectRequest{Name: "Apollo"})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestProjectCreate_WithMembers(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)
	pm := seedUser(t, db, "Paula PM", models.RoleProjectManager)
	dev := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	project, err := svc.Create(actor(pm), &CreateProjectRequest{
		Name:      "Apollo",
		MemberIDs: []uint{dev.ID},
	})
	if err != nil {
		t.Fatalf("create with members failed: %v", err)
	}
	if len(project.Members) != 1 || project.Members[0].ID != dev.ID {
		t.Errorf("expected dev as sole member, got %+v", project.Members)
	}

	_, err = svc.Create(actor(pm), &CreateProjectRequest{
		Name:      "Borealis",
		MemberIDs: []uint{9999},
	})
	wantStatus(t, err, http.StatusBadRequest)
}

func TestProjectList_ScopeByRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	admin := seedUser(t, db, "Admin", models.RoleAdmin)
	pm := seedUser(t, db, "Paula PM", models.RoleProjectManager)
	dev := seedUser(t, db, "Dana Dev", models.RoleDeveloper)
	outsider := seedUser(t, db, "Oscar Out", models.RoleDeveloper)

	seedProject(t, db, "Apollo", pm, dev)
	seedProject(t, db, "Borealis", admin)

	all, err := svc.List(actor(admin), &ProjectListRequest{})
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin should see 2 projects, got %d", len(all))
	}

	mine, err := svc.List(actor(dev), &ProjectListRequest{})
	if err != nil {
		t.Fatalf("member list failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "Apollo" {
		t.Errorf("developer should see only Apollo, got %+v", mine)
	}

	// Out-of-scope callers are not rejected, they just see nothing.
	_, err = svc.List(actor(outsider), &ProjectListRequest{})
	wantStatus(t, err, http.StatusNotFound)
}

func TestProjectList_NameFilter(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)
	admin := seedUser(t, db, "Admin", models.RoleAdmin)

	seedProject(t, db, "Apollo", admin)
	seedProject(t, db, "Borealis", admin)

	// The filter ignores case in both the filter value and the column.
	for _, filter := range []string{"apol", "APOL", "Apol"} {
		got, err := svc.List(actor(admin), &ProjectListRequest{Name: filter})
		if err != nil {
			t.Fatalf("filter %q failed: %v", filter, err)
		}
		if len(got) != 1 || got[0].Name != "Apollo" {
			t.Errorf("filter %q: expected only Apollo, got %+v", filter, got)
		}
	}

	_, err := svc.List(actor(admin), &ProjectListRequest{Name: "zzz"})
	wantStatus(t, err, http.StatusNotFound)
}

func TestProjectGet_Permissions(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	pm := seedUser(t, db, "Paula PM", models.RoleProjectManager)
	dev := seedUser(t, db, "Dana Dev", models.RoleDeveloper)
	outsider := seedUser(t, db, "Oscar Out", models.RoleDeveloper)

	project := seedProject(t, db, "Apollo", pm, dev)

	if _, err := svc.GetByID(actor(dev), project.ID); err != nil {
		t.Errorf("member should view project: %v", err)
	}
	if _, err := svc.GetByID(actor(pm), project.ID); err != nil {
		t.Errorf("creator should view project: %v", err)
	}
	_, err := svc.GetByID(actor(outsider), project.ID)
	wantStatus(t, err, http.StatusForbidden)
}

func TestProjectUpdate_PMRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	pm := seedUser(t, db, "Paula PM", models.RoleProjectManager)
	otherPM := seedUser(t, db, "Peter PM", models.RoleProjectManager)
	memberPM := seedUser(t, db, "Mia PM", models.RoleProjectManager)
	dev := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	project := seedProject(t, db, "Apollo", pm, memberPM, dev)

	newName := "Apollo v2"
	if _, err := svc.Update(actor(pm), project.ID, &UpdateProjectRequest{Name: &newName}); err != nil {
		t.Errorf("creating PM should update: %v", err)
	}

	desc := "updated"
	if _, err := svc.Update(actor(memberPM), project.ID, &UpdateProjectRequest{Description: &desc}); err != nil {
		t.Errorf("member PM should update: %v", err)
	}

	_, err := svc.Update(actor(otherPM), project.ID, &UpdateProjectRequest{Description: &desc})
	wantStatus(t, err, http.StatusForbidden)

	_, err = svc.Update(actor(dev), project.ID, &UpdateProjectRequest{Description: &desc})
	wantStatus(t, err, http.StatusForbidden)
}

func TestProjectDelete_AdminOnlyAndCascade(t *testing.T) {
	db := newTestDB(t)
	svc := NewProjectService(db)

	admin := seedUser(t, db, "Admin", models.RoleAdmin)
	pm := seedUser(t, db, "Paula PM", models.RoleProjectManager)
	dev := seedUser(t, db, "Dana Dev", models.RoleDeveloper)

	project := seedProject(t, db, "Apollo", pm, dev)
	task := seedTask(t, db, project, "Build API", models.TaskStatusTodo, pm, dev)
	comment := models.Comment{Content: "on it", ProjectID: &project.ID, TaskID: &task.ID, CreatedBy: dev.ID}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}

	err := svc.Delete(actor(pm), project.ID)
	wantStatus(t, err, http.StatusForbidden)

	if err := svc.Delete(actor(admin), project.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}

	var tasks, comments, memberships int64
	db.Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&tasks)
	db.Model(&models.Comment{}).Where("project_id = ?", project.ID).Count(&comments)
	db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&memberships)
	if tasks != 0 || comments != 0 || memberships != 0 {
		t.Errorf("cascade left rows behind: tasks=%d comments=%d memberships=%d", tasks, comments, memberships)
	}
}
