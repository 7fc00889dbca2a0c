package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kanishkumar-karunakaran/task-management-system/internal/services"
	"github.com/kanishkumar-karunakaran/task-management-system/pkg/response"
	"gorm.io/gorm"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{
		commentService: services.NewCommentService(db),
	}
}

// List returns the comments in the caller's scope
// GET /api/comments
func (h *CommentHandler) List(c *gin.Context) {
	comments, err := h.commentService.List(actorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, comments)
}

// Create posts a comment on a task within a project
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(actorFrom(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, comment)
}

// GetByID returns a comment by id
// GET /api/comments/:id
func (h *CommentHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	comment, err := h.commentService.GetByID(actorFrom(c), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, comment)
}

// Update edits a comment's content
// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	var req services.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.commentService.Update(actorFrom(c), uint(id), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, comment)
}

// Delete removes a comment
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	if err := h.commentService.Delete(actorFrom(c), uint(id)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "comment deleted"})
}
