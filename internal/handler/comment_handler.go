package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"webmail/internal/model"
	"webmail/internal/service"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new comment handler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateCommentRequest represents a new comment.
type CreateCommentRequest struct {
	CommentDetail string `json:"comment_detail" validate:"required,max=2000"`
}

// SetCommentStatusRequest moves a comment to another moderation status.
type SetCommentStatusRequest struct {
	Status model.CommentStatus `json:"status" validate:"required"`
}

// ListComments godoc
// @Summary List all comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Comment
// @Failure 401 {object} errors.ErrorResponse
// @Router /comments [get]
func (h *CommentHandler) ListComments(c echo.Context) error {
	comments, err := h.commentService.ListComments(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// ListMyComments godoc
// @Summary List the principal's comments
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Comment
// @Failure 401 {object} errors.ErrorResponse
// @Router /comments/mine [get]
func (h *CommentHandler) ListMyComments(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	comments, err := h.commentService.ListCommentsByUser(c.Request().Context(), p)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// CreateComment godoc
// @Summary Post a comment
// @Description The comment is moderated on creation and stored as Pending or Toxic Comment.
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCommentRequest true "Comment"
// @Success 201 {object} model.Comment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /comments [post]
func (h *CommentHandler) CreateComment(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.commentService.CreateComment(c.Request().Context(), p, req.CommentDetail)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.commentService.DeleteComment(c.Request().Context(), id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetStatus godoc
// @Summary Change a comment's moderation status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body SetCommentStatusRequest true "New status: Approved, Toxic Comment, Passive or Pending"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/comments/{id}/status [patch]
func (h *CommentHandler) SetStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req SetCommentStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.commentService.SetStatus(c.Request().Context(), id, req.Status); err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "comment status updated"})
}
