package model

// ProductUnit is the unit of measurement a product is counted in.
type ProductUnit string

const (
	UnitPiece    ProductUnit = "pcs"
	UnitKilogram ProductUnit = "kg"
	UnitLiter    ProductUnit = "liter"
	UnitMeter    ProductUnit = "meter"
	UnitBox      ProductUnit = "box"
)

// Product is catalog master data. It carries no stock column: current stock
// is always derived by folding the stock_transactions ledger.
type Product struct {
	BaseModel
	SKU          string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required,sku"`
	Name         string      `gorm:"type:varchar(200);not null" json:"name" validate:"required"`
	Description  string      `gorm:"type:text" json:"description,omitempty"`
	Category     string      `gorm:"type:varchar(100);not null;index" json:"category" validate:"required"`
	Unit         ProductUnit `gorm:"type:varchar(10);not null;default:'pcs'" json:"unit" validate:"required,oneof=pcs kg liter meter box"`
	UnitPrice    int64       `gorm:"not null;default:0" json:"unit_price" validate:"gte=0"` // cents
	MinStock     int         `gorm:"not null;default:0" json:"min_stock" validate:"gte=0"`
	ReorderPoint int         `gorm:"not null;default:10" json:"reorder_point" validate:"gte=0"`
}
