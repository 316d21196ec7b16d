package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"webmail/internal/auth"
	apperrors "webmail/internal/errors"
	"webmail/internal/model"
	"webmail/internal/moderation"
	"webmail/internal/repository"
)

// CommentService manages comments and their moderation status.
type CommentService interface {
	CreateComment(ctx context.Context, principal *auth.Principal, text string) (*model.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	SetStatus(ctx context.Context, id uint, status model.CommentStatus) error
	ListComments(ctx context.Context) ([]model.Comment, error)
	ListCommentsByUser(ctx context.Context, principal *auth.Principal) ([]model.Comment, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	moderator   moderation.Moderator
	logger      *zap.Logger
	now         func() time.Time
}

// NewCommentService creates a new comment service.
func NewCommentService(
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	moderator moderation.Moderator,
	logger *zap.Logger,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		moderator:   moderator,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateComment stores a comment by the principal. Its initial status comes from
// moderation and is always Pending or Toxic Comment.
func (s *commentService) CreateComment(ctx context.Context, principal *auth.Principal, text string) (*model.Comment, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	author, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find author: %w", err)
	}

	text = strings.TrimSpace(text)
	status := s.moderator.Moderate(ctx, text)
	if status != model.CommentStatusToxic {
		status = model.CommentStatusPending
	}

	comment := &model.Comment{
		CommentDetail: text,
		CommentDate:   s.now(),
		CommentStatus: status,
		AppUserID:     author.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.AppUser = author

	s.logger.Info("Comment created",
		zap.Uint("comment_id", comment.ID),
		zap.String("user_id", author.ID.String()),
		zap.String("status", string(status)))
	return comment, nil
}

// DeleteComment permanently removes a comment.
func (s *commentService) DeleteComment(ctx context.Context, id uint) error {
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// SetStatus moves a comment to any status of the comment state set.
func (s *commentService) SetStatus(ctx context.Context, id uint, status model.CommentStatus) error {
	if !status.Valid() {
		return apperrors.ErrInvalidCommentStatus
	}
	if err := s.commentRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("update comment status: %w", err)
	}

	s.logger.Info("Comment status changed",
		zap.Uint("comment_id", id),
		zap.String("status", string(status)))
	return nil
}

func (s *commentService) ListComments(ctx context.Context) ([]model.Comment, error) {
	comments, err := s.commentRepo.ListWithAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *commentService) ListCommentsByUser(ctx context.Context, principal *auth.Principal) ([]model.Comment, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	comments, err := s.commentRepo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
