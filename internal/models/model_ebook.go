package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Ebook struct {
	ID            string          `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Title         string          `gorm:"column:title;type:varchar(256);not null" json:"title"`
	Author        string          `gorm:"column:author;type:varchar(128)" json:"author"`
	Description   string          `gorm:"column:description;type:text" json:"description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	FileURL       string          `gorm:"column:file_url;type:varchar(512)" json:"file_url"`
	CoverImageURL string          `gorm:"column:cover_image_url;type:varchar(512)" json:"cover_image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Ebook) TableName() string { return "ebook" }
