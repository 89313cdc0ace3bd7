package model

import (
	"time"

	"github.com/google/uuid"
)

type BillMode string

const (
	BillModeSell   BillMode = "sell"
	BillModeReturn BillMode = "return"
)

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeOnline PaymentMode = "online"
)

type BillStatus string

const (
	BillStatusPaid           BillStatus = "PAID"
	BillStatusPendingPayment BillStatus = "PENDING_PAYMENT"
	BillStatusExpired        BillStatus = "EXPIRED"
)

// Customer is embedded in the bill; customers are not managed entities.
type Customer struct {
	Name  string `gorm:"type:varchar(255)" json:"name" validate:"required"`
	Phone string `gorm:"type:varchar(20)" json:"phone"`
}

// Bill is the persisted, immutable record of a finalized transaction.
// Items are denormalized snapshots, not references, so historical bills
// keep the prices they were sold at.
type Bill struct {
	BaseModel
	Date        time.Time   `gorm:"not null" json:"date"`
	StaffID     uuid.UUID   `gorm:"type:uuid;not null" json:"staff_id" validate:"uuid_required"`
	Staff       *Staff      `gorm:"foreignKey:StaffID" json:"staff,omitempty" validate:"-"`
	Customer    Customer    `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	Mode        BillMode    `gorm:"type:varchar(10);not null" json:"mode" validate:"required,oneof=sell return"`
	PaymentMode PaymentMode `gorm:"type:varchar(10);not null" json:"payment_mode" validate:"required,oneof=cash online"`
	Status      BillStatus  `gorm:"type:varchar(20);not null" json:"status"`
	Total       float64     `gorm:"not null" json:"total"`
	Items       []BillItem  `gorm:"foreignKey:BillID" json:"items" validate:"required,min=1,dive"`
}

// BillItem snapshots one scanned line at finalize time.
type BillItem struct {
	BaseModel
	BillID        uuid.UUID `gorm:"type:uuid;not null;index" json:"bill_id"`
	Barcode       string    `gorm:"type:varchar(50);not null" json:"barcode" validate:"required"`
	Name          string    `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Brand         string    `gorm:"type:varchar(255)" json:"brand"`
	Category      string    `gorm:"type:varchar(100)" json:"category"`
	Unit          string    `gorm:"type:varchar(20)" json:"unit"`
	ImageURL      string    `gorm:"type:varchar(512)" json:"image_url"`
	OriginalPrice float64   `gorm:"not null" json:"original_price"`
	Discount      string    `gorm:"type:varchar(10)" json:"discount"`
	FinalPrice    float64   `gorm:"not null" json:"final_price"`
	Qty           int       `gorm:"not null" json:"qty" validate:"required,gt=0"`
	Action        BillMode  `gorm:"type:varchar(10);not null" json:"action"` // sell or return, per unit
}
