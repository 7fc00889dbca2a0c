package services

import (
	"errors"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/authz"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/logger"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/response"
	"gorm.io/gorm"
)

// StatusNotifier receives a task id after its status changed and fans the
// change out to whoever should hear about it. Delivery is best effort.
type StatusNotifier interface {
	NotifyStatusChange(taskID uint)
}

type TaskService struct {
	db       *gorm.DB
	notifier StatusNotifier
}

func NewTaskService(db *gorm.DB, notifier StatusNotifier) *TaskService {
	return &TaskService{db: db, notifier: notifier}
}

type CreateTaskRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	ProjectID   uint              `json:"project_id" binding:"required"`
	AssignedTo  *uint             `json:"assigned_to"`
}

type UpdateTaskRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
	AssignedTo  *uint              `json:"assigned_to"`
	ClearAssign bool               `json:"clear_assignee"`
}

// StatusOnly reports whether the request changes nothing but the status.
func (r *UpdateTaskRequest) StatusOnly() bool {
	return r.Status != nil && r.Title == nil && r.Description == nil &&
		r.AssignedTo == nil && !r.ClearAssign
}

type TaskListRequest struct {
	Status      models.TaskStatus `form:"status"`
	Title       string            `form:"title"`
	ProjectName string            `form:"project_name"`
	Search      string            `form:"search"`
}

// List returns the tasks visible to the actor. Admins see every task;
// everyone else sees tasks of projects they created or belong to.
// Filters are conjunctive; search matches task title or project name.
func (s *TaskService) List(actor authz.Actor, req *TaskListRequest) ([]models.Task, error) {
	query := s.db.Model(&models.Task{}).
		Joins("JOIN projects ON projects.id = tasks.project_id").
		Preload("Project").Preload("Assignee")

	if actor.Role != models.RoleAdmin {
		query = query.Where(
			"projects.created_by = ? OR projects.id IN (?)",
			actor.ID,
			s.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", actor.ID),
		)
	}
	if req.Status != "" {
		query = query.Where("tasks.status = ?", req.Status)
	}
	// Postgres LIKE is case-sensitive, so fold both sides.
	if req.Title != "" {
		query = query.Where("LOWER(tasks.title) LIKE LOWER(?)", "%"+req.Title+"%")
	}
	if req.ProjectName != "" {
		query = query.Where("LOWER(projects.name) LIKE LOWER(?)", "%"+req.ProjectName+"%")
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("LOWER(tasks.title) LIKE LOWER(?) OR LOWER(projects.name) LIKE LOWER(?)", like, like)
	}

	var tasks []models.Task
	if err := query.Order("tasks.id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, response.NewNotFound("No tasks found.")
	}

	return tasks, nil
}

// Create records a new task with the actor as creator. Titles are unique
// within a project.
func (s *TaskService) Create(actor authz.Actor, req *CreateTaskRequest) (*models.Task, error) {
	if err := authz.CanCreateTask(actor); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewBadRequest("Invalid project ID.")
		}
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	if !status.Valid() {
		return nil, response.NewBadRequest("Status must be one of: TODO, IN_PROGRESS, DONE.")
	}

	var count int64
	s.db.Model(&models.Task{}).Where("title = ? AND project_id = ?", req.Title, req.ProjectID).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("A task with this title already exists in the project.")
	}

	if req.AssignedTo != nil {
		if err := s.db.First(&models.User{}, *req.AssignedTo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewBadRequest("Invalid assignee ID.")
			}
			return nil, err
		}
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   actor.ID,
	}
	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}

	return s.load(task.ID)
}

// GetByID returns a single task. Out-of-scope tasks surface as not found
// rather than forbidden, so existence is not leaked.
func (s *TaskService) GetByID(actor authz.Actor, id uint) (*models.Task, error) {
	task, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		info := projectInfo(task.Project)
		if info.CreatedBy != actor.ID && !info.IsMember(actor.ID) {
			return nil, response.NewNotFound("task not found")
		}
	}
	return task, nil
}

// Update applies a full or partial task update under the role matrix.
// patch distinguishes PATCH from PUT so the Developer status-only rule
// can be enforced.
func (s *TaskService) Update(actor authz.Actor, id uint, req *UpdateTaskRequest, patch bool) (*models.Task, error) {
	task, err := s.load(id)
	if err != nil {
		return nil, err
	}

	pinfo := projectInfo(task.Project)
	tinfo := authz.TaskInfo{AssignedTo: task.AssignedTo}
	if err := authz.CanUpdateTask(actor, pinfo, tinfo, req.StatusOnly(), patch); err != nil {
		return nil, err
	}

	if req.Status != nil && !req.Status.Valid() {
		return nil, response.NewBadRequest("Status must be one of: TODO, IN_PROGRESS, DONE.")
	}
	if req.Title != nil && *req.Title != task.Title {
		var count int64
		s.db.Model(&models.Task{}).
			Where("title = ? AND project_id = ? AND id <> ?", *req.Title, task.ProjectID, id).
			Count(&count)
		if count > 0 {
			return nil, response.NewBadRequest("A task with this title already exists in the project.")
		}
	}
	if req.AssignedTo != nil {
		if err := s.db.First(&models.User{}, *req.AssignedTo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewBadRequest("Invalid assignee ID.")
			}
			return nil, err
		}
	}

	statusChanged := req.Status != nil && *req.Status != task.Status

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	} else if req.ClearAssign {
		updates["assigned_to"] = nil
	}
	if len(updates) == 0 {
		return nil, response.NewBadRequest("no fields to update")
	}

	if err := s.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	if statusChanged && actor.Role == models.RoleDeveloper {
		s.notifyStatusChange(id)
	}

	return s.load(id)
}

// UpdateStatus is the dedicated status endpoint, reserved for the
// Developer assigned to the task.
func (s *TaskService) UpdateStatus(actor authz.Actor, id uint, status models.TaskStatus) (*models.Task, error) {
	task, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanUpdateTaskStatus(actor, authz.TaskInfo{AssignedTo: task.AssignedTo}); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, response.NewBadRequest("Status must be one of: TODO, IN_PROGRESS, DONE.")
	}

	changed := status != task.Status
	if err := s.db.Model(&models.Task{}).Where("id = ?", id).Update("status", status).Error; err != nil {
		return nil, err
	}

	if changed {
		s.notifyStatusChange(id)
	}

	return s.load(id)
}

// Delete removes a task and its comments. Admin only.
func (s *TaskService) Delete(actor authz.Actor, id uint) error {
	if _, err := s.load(id); err != nil {
		return err
	}
	if err := authz.CanDeleteTask(actor); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
}

func (s *TaskService) load(id uint) (*models.Task, error) {
	var task models.Task
	err := s.db.Preload("Project").Preload("Project.Members").Preload("Assignee").First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("task not found")
		}
		return nil, err
	}
	return &task, nil
}

// notifyStatusChange hands the change to the notifier without letting a
// delivery problem affect the request.
func (s *TaskService) notifyStatusChange(taskID uint) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Uint("task_id", taskID).Msg("status notification failed")
		}
	}()
	s.notifier.NotifyStatusChange(taskID)
}
