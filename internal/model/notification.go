package model

import "time"

// Notification is a navbar notice shown to every user.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Detail    string    `json:"detail" gorm:"type:text"`
	Icon      string    `json:"icon" gorm:"size:50"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
