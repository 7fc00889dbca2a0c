package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/authz"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/response"
	"gorm.io/gorm"
)

// ReportService builds project progress reports and archives a copy of
// each one under the media root.
type ReportService struct {
	db        *gorm.DB
	mediaRoot string
}

func NewReportService(db *gorm.DB, mediaRoot string) *ReportService {
	return &ReportService{db: db, mediaRoot: mediaRoot}
}

// Report is a generated progress report. Content is exactly what was
// written to disk.
type Report struct {
	Filename string
	Content  string
}

// taskPoints maps a status to its progress contribution. A task counts
// for 10 when done, 5 when started, 0 otherwise.
func taskPoints(status models.TaskStatus) int {
	return status.Points()
}

// Generate builds the progress report for a project, writes it under
// <media>/projects/<id>/ and returns it. Admins and project members only.
func (s *ReportService) Generate(actor authz.Actor, projectID uint) (*Report, error) {
	var project models.Project
	err := s.db.Preload("Creator").Preload("Members").First(&project, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}

	if err := authz.CanViewProjectReport(actor, projectInfo(&project)); err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err := s.db.Where("project_id = ?", projectID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	content := s.render(&project, tasks)

	dir := filepath.Join(s.mediaRoot, "projects", fmt.Sprintf("%d", project.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("project_%d_progress_report.txt", project.ID)
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0o644); err != nil {
		return nil, err
	}

	return &Report{Filename: filename, Content: content}, nil
}

func (s *ReportService) render(project *models.Project, tasks []models.Task) string {
	totalPoints := 0
	done, inProgress, todo := 0, 0, 0
	for _, t := range tasks {
		totalPoints += taskPoints(t.Status)
		switch t.Status {
		case models.TaskStatusDone:
			done++
		case models.TaskStatusInProgress:
			inProgress++
		case models.TaskStatusTodo:
			todo++
		}
	}

	progress := 0.0
	if len(tasks) > 0 {
		progress = float64(totalPoints) / float64(len(tasks)*10) * 100
	}

	managerName := ""
	if project.Creator != nil {
		managerName = project.Creator.Name
	}
	memberNames := make([]string, 0, len(project.Members))
	for _, m := range project.Members {
		memberNames = append(memberNames, m.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project Progress Report: %s\n", project.Name)
	fmt.Fprintf(&b, "Project Manager: %s\n", managerName)
	fmt.Fprintf(&b, "Team Members: %s\n\n", strings.Join(memberNames, ", "))
	b.WriteString("Task Details:\n")

	for _, t := range tasks {
		fmt.Fprintf(&b, "- Task: %s\n", t.Title)
		fmt.Fprintf(&b, "  Status: %s\n", t.Status)
		fmt.Fprintf(&b, "  Points: %d\n\n", taskPoints(t.Status))
	}

	fmt.Fprintf(&b, "Total Tasks: %d\n", len(tasks))
	fmt.Fprintf(&b, "Completed Tasks: %d\n", done)
	fmt.Fprintf(&b, "In Progress Tasks: %d\n", inProgress)
	fmt.Fprintf(&b, "To Do Tasks: %d\n\n", todo)
	fmt.Fprintf(&b, "Overall Project Progress: %.2f%%\n\n", progress)

	fmt.Fprintf(&b, "Report generated on: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("Project Progress depends on task completion. The higher the number of tasks completed, the more progress the project has made.\n")
	b.WriteString("A task is considered completed when it has the status 'DONE'. Tasks in 'IN_PROGRESS' or 'TODO' represent incomplete work.\n")

	return b.String()
}
