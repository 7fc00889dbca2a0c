package services

import (
	"context"
	"fmt"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/logger"
	"gorm.io/gorm"
)

// Mailer is the delivery half of the notification pipeline.
type Mailer interface {
	Send(to []string, subject, plainBody, htmlBody string) error
}

// NotificationService turns task status changes into mail for the tech
// leads of the affected project.
type NotificationService struct {
	db     *gorm.DB
	mailer Mailer
	queue  NotifyQueue
}

func NewNotificationService(db *gorm.DB, mailer Mailer, queue NotifyQueue) *NotificationService {
	s := &NotificationService{db: db, mailer: mailer, queue: queue}
	if queue != nil {
		queue.SetProcessor(s.Process)
	}
	return s
}

// NotifyStatusChange enqueues a notification for a task whose status
// just changed. Failures are logged and never propagated.
func (s *NotificationService) NotifyStatusChange(taskID uint) {
	if s.queue == nil {
		if err := s.Process(context.Background(), &NotifyTask{TaskID: taskID}); err != nil {
			logger.Infof("[Notify] Notification for task %d failed: %v", taskID, err)
		}
		return
	}
	if err := s.queue.Enqueue(&NotifyTask{TaskID: taskID}); err != nil {
		logger.Infof("[Notify] Failed to enqueue notification for task %d: %v", taskID, err)
	}
}

// Process loads the task and mails every tech lead in its project's
// member set. No tech leads means nothing to do.
func (s *NotificationService) Process(_ context.Context, nt *NotifyTask) error {
	var task models.Task
	err := s.db.Preload("Project").Preload("Project.Members").Preload("Assignee").
		First(&task, nt.TaskID).Error
	if err != nil {
		return err
	}
	if task.Project == nil {
		return fmt.Errorf("task %d has no project", nt.TaskID)
	}

	var recipients []string
	for _, m := range task.Project.Members {
		if m.Role == models.RoleTechLead {
			recipients = append(recipients, m.Email)
		}
	}
	if len(recipients) == 0 {
		logger.Infof("[Notify] No tech leads on project %d, skipping", task.Project.ID)
		return nil
	}

	assigneeName := "Unknown"
	if task.Assignee != nil {
		assigneeName = task.Assignee.Name
	}

	subject := fmt.Sprintf("Attention!!! Task Update %s status changed", task.Title)
	plain := s.plainBody(task.Project.Name, task.Title, string(task.Status), assigneeName)
	html := s.htmlBody(task.Project.Name, task.Title, string(task.Status), assigneeName)

	return s.mailer.Send(recipients, subject, plain, html)
}

func (s *NotificationService) plainBody(projectName, taskTitle, status, assigneeName string) string {
	return fmt.Sprintf(`Hello Tech Lead,

A task has been updated in project %s:

Project: %s
Task: %s
New Status: %s
Updated By: %s

Please check the update progress.

Regards,
Dev Team,
%s
`, projectName, projectName, taskTitle, status, assigneeName, projectName)
}

func (s *NotificationService) htmlBody(projectName, taskTitle, status, assigneeName string) string {
	return fmt.Sprintf(`<html>
<body>
    <p>Hello Tech Lead,</p>
    <p>A task has been updated in project <strong>%s</strong>:</p>
    <p><strong>Project:</strong> %s<br>
    <strong>Task:</strong> %s<br>
    <strong>New Status:</strong> <span style="background-color: yellow; padding: 2px 5px; font-weight: bold;">%s</span><br>
    <strong>Updated By:</strong> %s</p>
    <p>Please review the update.</p>
    <p>Regards,<br>Dev Team,<br>%s</p>
</body>
</html>
`, projectName, projectName, taskTitle, status, assigneeName, projectName)
}
