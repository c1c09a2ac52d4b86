package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TxSale       TransactionType = "sale"
	TxPurchase   TransactionType = "purchase"
	TxAdjustment TransactionType = "adjustment"
	TxReturn     TransactionType = "return"
)

// StockTransaction is one entry in the append-only stock ledger. Entries are
// immutable once written: no updates, no soft delete. Sale entries carry
// negative quantities, purchases and returns positive, adjustments either sign.
type StockTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product         *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`
	Type            TransactionType `gorm:"type:varchar(20);not null" json:"type" validate:"required,oneof=sale purchase adjustment return"`
	Quantity        int             `gorm:"not null" json:"quantity"` // signed
	Reason          string          `gorm:"type:text" json:"reason"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	SaleID          *uuid.UUID      `gorm:"type:uuid;index" json:"sale_id,omitempty"`
	ReferenceNumber string          `gorm:"type:varchar(100)" json:"reference_number,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (t *StockTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
