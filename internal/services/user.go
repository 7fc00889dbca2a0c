package services

import (
	"errors"
	"strings"

	"github.com/kanishkumar-karunakaran/task-management-system/internal/models"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/utils"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required"`
	Password string      `json:"password" binding:"required"`
	Role     models.Role `json:"role" binding:"required"`
}

type UserListRequest struct {
	Name  string      `form:"name"`
	Email string      `form:"email"`
	Role  models.Role `form:"role"`
}

// Create validates and persists a new user. Role is required, the email
// must contain "@" and be unique, and the password must be at least six
// characters.
func (s *UserService) Create(req *CreateUserRequest) (*models.User, error) {
	if !strings.Contains(req.Email, "@") {
		return nil, response.NewBadRequest("Email must contain an '@' symbol.")
	}
	if len(req.Password) < 6 {
		return nil, response.NewBadRequest("Password must be at least 6 characters long.")
	}
	if !req.Role.Valid() {
		return nil, response.NewBadRequest("Role must be one of: ADMIN, PROJECT_MANAGER, TECH_LEAD, DEVELOPER, CLIENT.")
	}

	email := normalizeEmail(req.Email)

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, response.NewBadRequest("A user with this email already exists.")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     req.Name,
		Email:    email,
		Password: hashed,
		Role:     req.Role,
		IsActive: true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// List returns users, optionally filtered by name, email and role.
func (s *UserService) List(req *UserListRequest) ([]models.User, error) {
	var users []models.User

	query := s.db.Model(&models.User{})
	if req.Name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+req.Name+"%")
	}
	if req.Email != "" {
		query = query.Where("LOWER(email) LIKE LOWER(?)", "%"+req.Email+"%")
	}
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}

	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

type AdminUpdateUserRequest struct {
	Name     *string      `json:"name"`
	Password *string      `json:"password"`
	Role     *models.Role `json:"role"`
}

// AdminUpdate lets an admin change a user's name, password or role.
// The email is office-issued and cannot be modified.
func (s *UserService) AdminUpdate(id uint, req *AdminUpdateUserRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, response.NewBadRequest("Password must be at least 6 characters long.")
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, response.NewBadRequest("Role must be one of: ADMIN, PROJECT_MANAGER, TECH_LEAD, DEVELOPER, CLIENT.")
		}
		updates["role"] = *req.Role
	}

	if len(updates) == 0 {
		return nil, response.NewBadRequest("no fields to update")
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.db.First(&user, id)
	return &user, nil
}

type SelfUpdateRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// SelfUpdate lets a user change their own name or password. Role changes
// stay admin-only.
func (s *UserService) SelfUpdate(id uint, req *SelfUpdateRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, response.NewBadRequest("Password must be at least 6 characters long.")
		}
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hashed
	}

	if len(updates) == 0 {
		return nil, response.NewBadRequest("no fields to update")
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	s.db.First(&user, id)
	return &user, nil
}

// Delete removes a user and everything owned by them: projects they
// created (with their tasks and comments), tasks they created, their
// comments, their memberships and refresh tokens. Tasks merely assigned
// to the user keep existing with the assignment cleared.
func (s *UserService) Delete(id uint) error {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("user not found")
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Projects created by the user cascade fully.
		var projectIDs []uint
		if err := tx.Model(&models.Project{}).Where("created_by = ?", id).Pluck("id", &projectIDs).Error; err != nil {
			return err
		}
		for _, pid := range projectIDs {
			if err := deleteProjectCascade(tx, pid); err != nil {
				return err
			}
		}

		// Tasks created by the user cascade with their comments.
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("created_by = ?", id).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		// Assignments are nullified, not cascaded.
		if err := tx.Model(&models.Task{}).Where("assigned_to = ?", id).Update("assigned_to", nil).Error; err != nil {
			return err
		}

		if err := tx.Where("created_by = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
