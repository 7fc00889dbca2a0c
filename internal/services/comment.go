package services

import (
	"errors"
	"strings"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/authz"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/response"
	"gorm.io/gorm"
)

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

type CreateCommentRequest struct {
	Content   string `json:"content"`
	ProjectID *uint  `json:"project"`
	TaskID    *uint  `json:"task"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create validates and persists a comment. Content, project and task are
// each required and reported individually, the task must belong to the
// project, and reposting identical content on the same target is rejected.
func (s *CommentService) Create(actor authz.Actor, req *CreateCommentRequest) (*models.Comment, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, response.NewBadRequest("Comment content is required.")
	}
	if req.ProjectID == nil {
		return nil, response.NewBadRequest("A project must be specified for the comment.")
	}
	if req.TaskID == nil {
		return nil, response.NewBadRequest("A task must be specified for the comment.")
	}

	var project models.Project
	if err := s.db.Preload("Members").First(&project, *req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("Invalid project ID.")
		}
		return nil, err
	}
	var task models.Task
	if err := s.db.First(&task, *req.TaskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("Invalid task ID.")
		}
		return nil, err
	}
	if task.ProjectID != project.ID {
		return nil, response.NewBadRequest("The task does not belong to the specified project.")
	}

	if err := authz.CanCreateComment(actor, projectInfo(&project)); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	var count int64
	s.db.Model(&models.Comment{}).
		Where("content = ? AND created_by = ? AND project_id = ? AND task_id = ?",
			content, actor.ID, project.ID, task.ID).
		Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("Duplicate comment: You already posted this content for the same task/project.")
	}

	comment := models.Comment{
		Content:   content,
		ProjectID: &project.ID,
		TaskID:    &task.ID,
		CreatedBy: actor.ID,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	return s.load(comment.ID)
}

// List returns the comments in the actor's scope. Admins see all; Project
// Managers see comments on projects they created; Tech Leads and Clients
// see comments on projects they belong to; Developers see comments on
// tasks assigned to them.
func (s *CommentService) List(actor authz.Actor) ([]models.Comment, error) {
	query := s.db.Model(&models.Comment{}).
		Preload("Author").Preload("Project").Preload("Task")

	memberProjects := s.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", actor.ID)

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleProjectManager:
		query = query.Where(
			"project_id IN (?)",
			s.db.Model(&models.Project{}).Select("id").Where("created_by = ?", actor.ID),
		)
	case models.RoleTechLead, models.RoleClient:
		query = query.Where("project_id IN (?)", memberProjects)
	case models.RoleDeveloper:
		query = query.Where(
			"task_id IN (?)",
			s.db.Model(&models.Task{}).Select("id").Where("assigned_to = ?", actor.ID),
		)
	default:
		return nil, response.NewNotFound("No comments found.")
	}

	var comments []models.Comment
	if err := query.Order("id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, response.NewNotFound("No comments found.")
	}

	return comments, nil
}

// GetByID returns a single comment after a view check against the role
// matrix for its project.
func (s *CommentService) GetByID(actor authz.Actor, id uint) (*models.Comment, error) {
	comment, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin {
		info := s.commentProjectInfo(comment)
		if info.CreatedBy != actor.ID && !info.IsMember(actor.ID) && comment.CreatedBy != actor.ID {
			return nil, response.NewNotFound("comment not found")
		}
	}
	return comment, nil
}

// Update edits a comment's content under the per-role modify rules.
func (s *CommentService) Update(actor authz.Actor, id uint, req *UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.load(id)
	if err != nil {
		return nil, err
	}

	info := s.commentProjectInfo(comment)
	if err := authz.CanModifyComment(actor, authz.CommentUpdate, authz.CommentInfo{CreatedBy: comment.CreatedBy}, info); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, response.NewBadRequest("Comment content is required.")
	}

	if err := s.db.Model(&models.Comment{}).Where("id = ?", id).Update("content", content).Error; err != nil {
		return nil, err
	}

	return s.load(id)
}

// Delete removes a comment under the per-role modify rules.
func (s *CommentService) Delete(actor authz.Actor, id uint) error {
	comment, err := s.load(id)
	if err != nil {
		return err
	}

	info := s.commentProjectInfo(comment)
	if err := authz.CanModifyComment(actor, authz.CommentDelete, authz.CommentInfo{CreatedBy: comment.CreatedBy}, info); err != nil {
		return err
	}

	return s.db.Delete(&models.Comment{}, id).Error
}

func (s *CommentService) load(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.Preload("Author").Preload("Project").Preload("Project.Members").Preload("Task").
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("comment not found")
		}
		return nil, err
	}
	return &comment, nil
}

// commentProjectInfo resolves the project snapshot the modify rules need.
// A comment whose project link was cleared yields an empty snapshot, so
// only admins can still touch it.
func (s *CommentService) commentProjectInfo(comment *models.Comment) authz.ProjectInfo {
	if comment.Project != nil {
		return projectInfo(comment.Project)
	}
	if comment.ProjectID != nil {
		var project models.Project
		if err := s.db.Preload("Members").First(&project, *comment.ProjectID).Error; err == nil {
			return projectInfo(&project)
		}
	}
	return authz.ProjectInfo{}
}
