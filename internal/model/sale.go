package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentMixed    PaymentMethod = "mixed"
)

type SaleStatus string

const (
	SalePending   SaleStatus = "pending"
	SaleCompleted SaleStatus = "completed"
	SaleCancelled SaleStatus = "cancelled"
)

// Sale is the sale header. It owns its items: a sale is only ever created
// together with them, and cancellation is meaningful only for the whole
// aggregate. Status transitions one-way: pending -> completed -> cancelled.
type Sale struct {
	BaseModel
	SaleNumber    string        `gorm:"type:varchar(20);uniqueIndex;not null" json:"sale_number"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID    *uuid.UUID    `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Customer      *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TotalAmount   int64         `gorm:"not null" json:"total_amount"` // cents
	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null" json:"payment_method" validate:"required,oneof=cash card transfer mixed"`
	Status        SaleStatus    `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
	Items         []SaleItem    `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// SaleItem is an immutable line record. SKU, name and unit price are
// snapshots taken at sale time, not live references into the catalog.
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	SKU         string    `gorm:"type:varchar(50);not null" json:"sku"`
	ProductName string    `gorm:"type:varchar(200);not null" json:"product_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Subtotal    int64     `gorm:"not null" json:"subtotal"` // quantity * unit price
	CreatedAt   time.Time `json:"created_at"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
