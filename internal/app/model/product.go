package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ImageList is the products.images column: a JSON array of servable paths.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		*l = ImageList{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported images column type %T", value)
	}
	if len(raw) == 0 {
		*l = ImageList{}
		return nil
	}
	return json.Unmarshal(raw, l)
}

type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int64     `gorm:"not null" json:"price"` // VND, smallest unit
	Image       string    `json:"image"`                 // legacy single path, mirrors Images[0]
	Images      ImageList `gorm:"type:text" json:"images"`
	Category    string    `json:"category"`
	Stock       int       `gorm:"default:0" json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// SetImages replaces the image list and keeps the legacy column in sync
// (image always mirrors the first entry).
func (p *Product) SetImages(images []string) {
	p.Images = ImageList(images)
	if len(images) > 0 {
		p.Image = images[0]
	} else {
		p.Image = ""
	}
}

// AllImages returns the image list, falling back to the legacy column for
// rows written before the images column existed.
func (p *Product) AllImages() []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	if p.Image != "" {
		return []string{p.Image}
	}
	return nil
}
