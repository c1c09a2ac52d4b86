package model

// Customer tracks credit-bearing buyers. CurrentDebt must never exceed
// CreditLimit after a sale; the sale workflow enforces this inside its
// transaction boundary.
type Customer struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null" json:"name" validate:"required"`
	Phone       string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Email       string `gorm:"type:varchar(255)" json:"email,omitempty" validate:"omitempty,email"`
	Address     string `gorm:"type:text" json:"address,omitempty"`
	CreditLimit int64  `gorm:"not null;default:0" json:"credit_limit" validate:"gte=0"` // cents
	CurrentDebt int64  `gorm:"not null;default:0" json:"current_debt"`                  // cents
}
