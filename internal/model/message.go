package model

import "time"

// Message is a mail exchanged between two accounts, addressed by email.
type Message struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Subject       string    `json:"subject" gorm:"size:255;not null"`
	MessageDetail string    `json:"message_detail" gorm:"type:text"`
	SenderEmail   string    `json:"sender_email" gorm:"size:255;not null;index"`
	ReceiverEmail string    `json:"receiver_email" gorm:"size:255;not null;index"`
	SendDate      time.Time `json:"send_date" gorm:"not null;index"`
	IsRead        bool      `json:"is_read" gorm:"default:false"`
	CategoryID    *uint     `json:"category_id,omitempty" gorm:"index"`

	// Relations
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

// MessageWithSenderInfo is an inbox row joined with sender and category display data.
type MessageWithSenderInfo struct {
	MessageID     uint      `json:"message_id"`
	Subject       string    `json:"subject"`
	MessageDetail string    `json:"message_detail"`
	SendDate      time.Time `json:"send_date"`
	IsRead        bool      `json:"is_read"`
	SenderEmail   string    `json:"sender_email"`
	SenderName    string    `json:"sender_name"`
	SenderSurname string    `json:"sender_surname"`
	CategoryName  string    `json:"category_name"`
}

// MessageWithReceiverInfo is a sendbox row joined with receiver and category display data.
type MessageWithReceiverInfo struct {
	MessageID       uint      `json:"message_id"`
	Subject         string    `json:"subject"`
	MessageDetail   string    `json:"message_detail"`
	SendDate        time.Time `json:"send_date"`
	IsRead          bool      `json:"is_read"`
	ReceiverEmail   string    `json:"receiver_email"`
	ReceiverName    string    `json:"receiver_name"`
	ReceiverSurname string    `json:"receiver_surname"`
	CategoryName    string    `json:"category_name"`
}
