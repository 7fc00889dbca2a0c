package services

import (
	"errors"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/authz"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	MemberIDs   []uint `json:"members"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	MemberIDs   *[]uint `json:"members"`
}

type ProjectListRequest struct {
	Name string `form:"name"`
}

// List returns the projects the actor is allowed to see. Admins see
// everything; everyone else sees projects they created or belong to.
// Callers are never rejected here, an out-of-scope actor just gets an
// empty view, which surfaces as a not-found error.
func (s *ProjectService) List(actor authz.Actor, req *ProjectListRequest) ([]models.Project, error) {
	query := s.db.Model(&models.Project{}).Preload("Creator").Preload("Members")

	if actor.Role != models.RoleAdmin {
		query = query.Where(
			"created_by = ? OR id IN (?)",
			actor.ID,
			s.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", actor.ID),
		)
	}
	if req.Name != "" {
		// Postgres LIKE is case-sensitive, so fold both sides.
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+req.Name+"%")
	}

	var projects []models.Project
	if err := query.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, response.NewNotFound("No projects found.")
	}

	return projects, nil
}

// Create records a new project with the actor as creator. Only admins
// and project managers may create projects, and names are unique.
func (s *ProjectService) Create(actor authz.Actor, req *CreateProjectRequest) (*models.Project, error) {
	if err := authz.CanCreateProject(actor); err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.Project{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("A project with this name already exists.")
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   actor.ID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return replaceMembers(tx, project.ID, req.MemberIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.load(project.ID)
}

// GetByID returns a single project after an authorization check.
func (s *ProjectService) GetByID(actor authz.Actor, id uint) (*models.Project, error) {
	project, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanViewProject(actor, projectInfo(project)); err != nil {
		return nil, err
	}
	return project, nil
}

// Update modifies a project's name, description or member list.
func (s *ProjectService) Update(actor authz.Actor, id uint, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanUpdateProject(actor, projectInfo(project)); err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != project.Name {
		var count int64
		s.db.Model(&models.Project{}).Where("name = ? AND id <> ?", *req.Name, id).Count(&count)
		if count > 0 {
			return nil, response.NewBadRequest("A project with this name already exists.")
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := make(map[string]interface{})
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if len(updates) > 0 {
			if err := tx.Model(&models.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.MemberIDs != nil {
			if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
				return err
			}
			return replaceMembers(tx, id, *req.MemberIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(id)
}

// Delete removes a project together with its tasks, comments and
// membership rows. Admin only.
func (s *ProjectService) Delete(actor authz.Actor, id uint) error {
	if _, err := s.load(id); err != nil {
		return err
	}
	if err := authz.CanDeleteProject(actor); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteProjectCascade(tx, id)
	})
}

func (s *ProjectService) load(id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Creator").Preload("Members").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("project not found")
		}
		return nil, err
	}
	return &project, nil
}

func projectInfo(p *models.Project) authz.ProjectInfo {
	return authz.ProjectInfo{CreatedBy: p.CreatedBy, MemberIDs: p.MemberIDs()}
}

func replaceMembers(tx *gorm.DB, projectID uint, memberIDs []uint) error {
	for _, uid := range memberIDs {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", uid).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return response.NewBadRequest("One or more member IDs are invalid.")
		}
		row := models.ProjectMember{ProjectID: projectID, UserID: uid}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteProjectCascade removes a project and every row that hangs off
// it. Comments attached to the project's tasks go first, then comments
// on the project itself, tasks, memberships and finally the project.
func deleteProjectCascade(tx *gorm.DB, projectID uint) error {
	var taskIDs []uint
	if err := tx.Model(&models.Task{}).Where("project_id = ?", projectID).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}
	if len(taskIDs) > 0 {
		if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Project{}, projectID).Error
}
