package models

import "time"

// User is an operator allowed to call the API.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username    string    `json:"username" gorm:"uniqueIndex;type:varchar(50);not null"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(100);not null"`
	Password    string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time `json:"created_at"`
}
