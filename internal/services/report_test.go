package services

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
)

func TestReportGenerate_Gate(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, t.TempDir())

	admin := seedUser(t, db, "Admin", models.RoleAdmin)
	pm := seedUser(t, db, "Paula PM", models.RoleProjectManager)
	dev := seedUser(t, db, "Dana Dev", models.RoleDeveloper)
	project := seedProject(t, db, "Apollo", pm, dev)

	if _, err := svc.Generate(actor(admin), project.ID); err != nil {
		t.Errorf("admin should generate the report: %v", err)
	}
	if _, err := svc.Generate(actor(dev), project.ID); err != nil {
		t.Errorf("member should generate the report: %v", err)
	}

	// Creating the project is not enough; the gate wants membership.
	_, err := svc.Generate(actor(pm), project.ID)
	wantStatus(t, err, http.StatusForbidden)

	_, err = svc.Generate(actor(admin), 9999)
	wantStatus(t, err, http.StatusNotFound)
}

func TestReportGenerate_EmptyProject(t *testing.T) {
	db := newTestDB(t)
	svc := NewReportService(db, t.TempDir())

	admin := seedUser(t, db, "Admin", models.RoleAdmin)
	project := seedProject(t, db, "Apollo", admin)

	report, err := svc.Generate(actor(admin), project.ID)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if !strings.Contains(report.Content, "Overall Project Progress: 0.00%") {
		t.Errorf("empty project should report 0.00%%, got:\n%s", report.Content)
	}
	if !strings.Contains(report.Content, "Total Tasks: 0") {
		t.Errorf("expected zero task count, got:\n%s", report.Content)
	}
}

func TestReportGenerate_ProgressAndPersistence(t *testing.T) {
	db := newTestDB(t)
	mediaRoot := t.TempDir()
	svc := NewReportService(db, mediaRoot)

	pm := seedUser(t, db, "Paula PM", models.RoleProjectManager)
	dev := seedUser(t, db, "Dana Dev", models.RoleDeveloper)
	project := seedProject(t, db, "Apollo", pm, dev)

	seedTask(t, db, project, "Build API", models.TaskStatusDone, pm, dev)
	seedTask(t, db, project, "Write docs", models.TaskStatusTodo, pm, nil)

	report, err := svc.Generate(actor(dev), project.ID)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// One DONE (10) and one TODO (0) out of a possible 20.
	if !strings.Contains(report.Content, "Overall Project Progress: 50.00%") {
		t.Errorf("expected 50.00%% progress, got:\n%s", report.Content)
	}
	for _, want := range []string{
		"Project Progress Report: Apollo",
		"Project Manager: Paula PM",
		"Team Members: Dana Dev",
		"- Task: Build API",
		"  Status: DONE",
		"  Points: 10",
		"Total Tasks: 2",
		"Completed Tasks: 1",
		"In Progress Tasks: 0",
		"To Do Tasks: 1",
	} {
		if !strings.Contains(report.Content, want) {
			t.Errorf("report missing %q:\n%s", want, report.Content)
		}
	}

	// The archived file matches the returned body byte for byte.
	path := filepath.Join(mediaRoot, "projects", fmt.Sprintf("%d", project.ID), report.Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if string(data) != report.Content {
		t.Error("archived file differs from returned content")
	}
}
