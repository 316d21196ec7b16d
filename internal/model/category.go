package model

// Category groups messages. Disabled categories keep their messages.
type Category struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	CategoryName   string `json:"category_name" gorm:"size:100;not null"`
	CategoryStatus bool   `json:"category_status" gorm:"default:true"`
}
