package model

import "github.com/google/uuid"

// ProductType holds the catalog data shared by every physical unit of a
// product: pricing, discount and descriptive fields.
type ProductType struct {
	BaseModel
	Name     string  `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Brand    string  `gorm:"type:varchar(255)" json:"brand"`
	Category string  `gorm:"type:varchar(100)" json:"category"`
	Unit     string  `gorm:"type:varchar(20)" json:"unit"`
	ImageURL string  `gorm:"type:varchar(512)" json:"image_url"`
	Price    float64 `gorm:"not null" json:"price" validate:"gte=0"`
	Discount string  `gorm:"type:varchar(10)" json:"discount"` // e.g. "5%"

	Items []ProductItem `gorm:"foreignKey:TypeID" json:"items,omitempty"`
}

// ProductItem is one physical, uniquely barcoded unit. One barcode = one
// unit; Sold flips true on sell finalize and back to false on return.
type ProductItem struct {
	BaseModel
	Barcode string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"barcode" validate:"required"`
	TypeID  uuid.UUID   `gorm:"type:uuid;not null" json:"type_id"`
	Type    ProductType `gorm:"foreignKey:TypeID" json:"type" validate:"-"`
	Sold    bool        `gorm:"default:false" json:"sold"`
}

// ScannedProduct is the flattened lookup result handed to the billing
// session after a barcode scan.
type ScannedProduct struct {
	Barcode  string  `json:"barcode"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Category string  `json:"category"`
	Unit     string  `json:"unit"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	Discount string  `json:"discount"`
	Sold     bool    `json:"sold"`
}
