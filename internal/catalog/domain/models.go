package domain

import (
	"time"
)

// Product is a catalog entry. Prices and costs are stored in cents.
type Product struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	Slug        string       `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_products_slug"`
	Name        string       `json:"name" gorm:"type:text;not null"`
	Description *string      `json:"description,omitempty" gorm:"type:text"`
	UnitPrice   int64        `json:"unit_price" gorm:"not null;default:0"`
	UnitCost    int64        `json:"unit_cost" gorm:"not null;default:0"`
	Active      bool         `json:"active" gorm:"not null;default:true"`
	ImageURL    *string      `json:"image_url,omitempty" gorm:"type:text"`
	Skus        []ProductSku `json:"skus,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// ProductSku is a sellable variant carrying the inventory count.
type ProductSku struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	ProductID int64     `json:"product_id" gorm:"not null;index:ux_product_skus_product_code,unique,priority:1"`
	Code      string    `json:"code" gorm:"type:text;not null;index:ux_product_skus_product_code,unique,priority:2"`
	Name      *string   `json:"name,omitempty" gorm:"type:text"`
	Stock     int       `json:"stock" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (ProductSku) TableName() string { return "product_skus" }
