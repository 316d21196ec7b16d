package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CommentStatus represents the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "Pending"
	CommentStatusToxic    CommentStatus = "Toxic Comment"
	CommentStatusApproved CommentStatus = "Approved"
	CommentStatusPassive  CommentStatus = "Passive"
)

// Valid reports whether s belongs to the comment state set.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentStatusPending, CommentStatusToxic, CommentStatusApproved, CommentStatusPassive:
		return true
	}
	return false
}

// Comment is a user comment together with its moderation status.
type Comment struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	CommentDetail string        `json:"comment_detail" gorm:"type:text;not null"`
	CommentDate   time.Time     `json:"comment_date" gorm:"not null;index"`
	CommentStatus CommentStatus `json:"comment_status" gorm:"type:varchar(30);not null;index"`
	AppUserID     uuid.UUID     `json:"app_user_id" gorm:"type:char(36);not null;index"`

	// Relations
	AppUser *AppUser `json:"-" gorm:"foreignKey:AppUserID"`
}

// CommentAuthor is the part of the author shown next to a comment.
type CommentAuthor struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// Author returns the public view of the comment's author, or nil when not loaded.
func (c *Comment) Author() *CommentAuthor {
	if c.AppUser == nil {
		return nil
	}
	return &CommentAuthor{Name: c.AppUser.Name, Surname: c.AppUser.Surname}
}

// MarshalJSON renders the author as a CommentAuthor so account fields never leave the API.
func (c Comment) MarshalJSON() ([]byte, error) {
	type plain Comment
	return json.Marshal(struct {
		plain
		Author *CommentAuthor `json:"author,omitempty"`
	}{plain: plain(c), Author: c.Author()})
}
