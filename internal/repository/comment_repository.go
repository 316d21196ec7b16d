package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"webmail/internal/model"
)

// CommentRepository defines comment persistence operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uint) (*model.Comment, error)
	UpdateStatus(ctx context.Context, id uint, status model.CommentStatus) error
	Delete(ctx context.Context, id uint) error
	ListWithAuthors(ctx context.Context) ([]model.Comment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment.
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindByID finds a comment by ID with its author.
func (r *commentRepository) FindByID(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Preload("AppUser").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateStatus sets the status of a comment. Returns gorm.ErrRecordNotFound if no row matched.
func (r *commentRepository) UpdateStatus(ctx context.Context, id uint, status model.CommentStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ?", id).
		Update("comment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows when the value is unchanged, so confirm existence.
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Delete hard-deletes a comment. Returns gorm.ErrRecordNotFound if no row matched.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListWithAuthors lists all comments joined with author display info, newest first.
func (r *commentRepository) ListWithAuthors(ctx context.Context) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Preload("AppUser").
		Order("comment_date DESC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByUser lists the comments written by one user, newest first.
func (r *commentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	if err := r.db.WithContext(ctx).Preload("AppUser").
		Where("app_user_id = ?", userID).
		Order("comment_date DESC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
