package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"webmail/internal/auth"
	apperrors "webmail/internal/errors"
	"webmail/internal/model"
	"webmail/internal/repository"
)

// SendMessageInput carries a message composed by the principal.
type SendMessageInput struct {
	ReceiverEmail string
	Subject       string
	MessageDetail string
	CategoryID    *uint
}

// MessageService handles the principal's mailbox.
type MessageService interface {
	Inbox(ctx context.Context, principal *auth.Principal) ([]model.MessageWithSenderInfo, error)
	InboxByCategory(ctx context.Context, principal *auth.Principal, categoryID uint) ([]model.MessageWithSenderInfo, error)
	Sendbox(ctx context.Context, principal *auth.Principal) ([]model.MessageWithReceiverInfo, error)
	GetMessage(ctx context.Context, principal *auth.Principal, id uint) (*model.Message, error)
	SendMessage(ctx context.Context, principal *auth.Principal, input SendMessageInput) (*model.Message, error)
}

type messageService struct {
	messageRepo  repository.MessageRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewMessageService creates a new message service.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	logger *zap.Logger,
) MessageService {
	return &messageService{
		messageRepo:  messageRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// mailboxOwner loads the principal's account. The address stored on the account
// wins over the one in the token, which may predate an email change.
func (s *messageService) mailboxOwner(ctx context.Context, principal *auth.Principal) (*model.AppUser, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find mailbox owner: %w", err)
	}
	return user, nil
}

func (s *messageService) Inbox(ctx context.Context, principal *auth.Principal) ([]model.MessageWithSenderInfo, error) {
	owner, err := s.mailboxOwner(ctx, principal)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListInbox(ctx, owner.Email)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return messages, nil
}

func (s *messageService) InboxByCategory(ctx context.Context, principal *auth.Principal, categoryID uint) ([]model.MessageWithSenderInfo, error) {
	owner, err := s.mailboxOwner(ctx, principal)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListInboxByCategory(ctx, owner.Email, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list inbox by category: %w", err)
	}
	return messages, nil
}

func (s *messageService) Sendbox(ctx context.Context, principal *auth.Principal) ([]model.MessageWithReceiverInfo, error) {
	owner, err := s.mailboxOwner(ctx, principal)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListSendbox(ctx, owner.Email)
	if err != nil {
		return nil, fmt.Errorf("list sendbox: %w", err)
	}
	return messages, nil
}

// GetMessage returns a message the principal sent or received. Opening it as
// the receiver marks it read. Messages of other users are reported as not found.
func (s *messageService) GetMessage(ctx context.Context, principal *auth.Principal, id uint) (*model.Message, error) {
	owner, err := s.mailboxOwner(ctx, principal)
	if err != nil {
		return nil, err
	}

	message, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}

	isReceiver := message.ReceiverEmail == owner.Email
	if !isReceiver && message.SenderEmail != owner.Email {
		return nil, apperrors.ErrNotFound
	}

	if isReceiver && !message.IsRead {
		if err := s.messageRepo.MarkRead(ctx, message.ID); err != nil {
			return nil, fmt.Errorf("mark read: %w", err)
		}
		message.IsRead = true
	}
	return message, nil
}

// SendMessage stores a message from the principal to an existing account.
func (s *messageService) SendMessage(ctx context.Context, principal *auth.Principal, input SendMessageInput) (*model.Message, error) {
	owner, err := s.mailboxOwner(ctx, principal)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(ctx, input.ReceiverEmail); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("find recipient: %w", err)
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrNotFound
			}
			return nil, fmt.Errorf("find category: %w", err)
		}
	}

	message := &model.Message{
		Subject:       input.Subject,
		MessageDetail: input.MessageDetail,
		SenderEmail:   owner.Email,
		ReceiverEmail: input.ReceiverEmail,
		SendDate:      s.now(),
		CategoryID:    input.CategoryID,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.logger.Info("Message sent",
		zap.Uint("message_id", message.ID),
		zap.String("user_id", owner.ID.String()))
	return message, nil
}
