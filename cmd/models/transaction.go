package models

import (
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// Transaction is a single income or expense record. The type is forced by
// the handler that created the record, never taken from the client, and
// ownership is tracked through the updated_by audit field rather than a
// user column. Deleting a category cascades to its transactions.
type Transaction struct {
	BaseModel
	CategoryID      uint            `gorm:"column:category_id;not null" json:"category_id"`
	Name            string          `gorm:"column:name;size:30;not null" json:"name"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	TransactionType string          `gorm:"column:transaction_type;size:10;not null" json:"transaction_type"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}
