package repository

import (
	"context"

	"gorm.io/gorm"

	"webmail/internal/model"
)

const (
	senderInfoColumns = `m.id AS message_id, m.subject, m.message_detail, m.send_date, m.is_read, m.sender_email,
		COALESCE(u.name, 'Unknown') AS sender_name,
		COALESCE(u.surname, 'User') AS sender_surname,
		COALESCE(c.category_name, 'No category') AS category_name`
	receiverInfoColumns = `m.id AS message_id, m.subject, m.message_detail, m.send_date, m.is_read, m.receiver_email,
		COALESCE(u.name, 'Unknown') AS receiver_name,
		COALESCE(u.surname, 'User') AS receiver_surname,
		COALESCE(c.category_name, 'No category') AS category_name`
)

// MessageRepository defines message persistence operations.
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id uint) (*model.Message, error)
	MarkRead(ctx context.Context, id uint) error
	ListInbox(ctx context.Context, receiverEmail string) ([]model.MessageWithSenderInfo, error)
	ListInboxByCategory(ctx context.Context, receiverEmail string, categoryID uint) ([]model.MessageWithSenderInfo, error)
	ListSendbox(ctx context.Context, senderEmail string) ([]model.MessageWithReceiverInfo, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a new message.
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// FindByID finds a message by ID.
func (r *messageRepository) FindByID(ctx context.Context, id uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkRead flags a message as read.
func (r *messageRepository) MarkRead(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// ListInbox lists messages received by an email, joined with sender and category.
func (r *messageRepository) ListInbox(ctx context.Context, receiverEmail string) ([]model.MessageWithSenderInfo, error) {
	var rows []model.MessageWithSenderInfo
	err := r.inboxQuery(ctx).
		Where("m.receiver_email = ?", receiverEmail).
		Order("m.send_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListInboxByCategory lists received messages filed under one category.
func (r *messageRepository) ListInboxByCategory(ctx context.Context, receiverEmail string, categoryID uint) ([]model.MessageWithSenderInfo, error) {
	var rows []model.MessageWithSenderInfo
	err := r.inboxQuery(ctx).
		Where("m.receiver_email = ? AND m.category_id = ?", receiverEmail, categoryID).
		Order("m.send_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSendbox lists messages sent from an email, joined with receiver and category.
func (r *messageRepository) ListSendbox(ctx context.Context, senderEmail string) ([]model.MessageWithReceiverInfo, error) {
	var rows []model.MessageWithReceiverInfo
	err := r.db.WithContext(ctx).Table("messages AS m").
		Select(receiverInfoColumns).
		Joins("LEFT JOIN app_users u ON u.email = m.receiver_email").
		Joins("LEFT JOIN categories c ON c.id = m.category_id").
		Where("m.sender_email = ?", senderEmail).
		Order("m.send_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *messageRepository) inboxQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("messages AS m").
		Select(senderInfoColumns).
		Joins("LEFT JOIN app_users u ON u.email = m.sender_email").
		Joins("LEFT JOIN categories c ON c.id = m.category_id")
}
