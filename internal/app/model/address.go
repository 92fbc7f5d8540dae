package model

import (
	"time"
)

type Address struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Recipient string    `gorm:"size:100;not null" json:"recipient"`
	Phone     string    `gorm:"size:30;not null" json:"phone"`
	Street    string    `gorm:"type:text;not null" json:"street"`
	City      string    `gorm:"size:100;not null" json:"city"`
	Postcode  string    `gorm:"size:10" json:"postcode"`
	IsDefault bool      `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Address) TableName() string {
	return "addresses"
}
