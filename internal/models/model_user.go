package models

import "time"

// User holds the minimal identity fields the settlement core reads. Account
// management lives in another service; this table is only consulted for
// checkout metadata (emails) and never written here.
type User struct {
	ID        string    `gorm:"column:id;primary_key;type:varchar(64)" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(256);not null" json:"email"`
	Name      string    `gorm:"column:name;type:varchar(256)" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "app_user" }
