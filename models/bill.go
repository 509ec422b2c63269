package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Bill struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"index;not null" json:"business_id" binding:"required"`
	VendorId      int             `gorm:"index;not null" json:"vendor_id" binding:"required"`
	BranchId      int             `gorm:"index" json:"branch_id"`
	BillNumber    string          `gorm:"size:255;not null" json:"bill_number" binding:"required"`
	BillDate      time.Time       `gorm:"not null" json:"bill_date" binding:"required"`
	BillDueDate   time.Time       `gorm:"not null" json:"bill_due_date"`
	CurrencyCode  string          `gorm:"size:3" json:"currency_code"`
	ExchangeRate  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"exchange_rate"`
	Notes         string          `gorm:"type:text;default:null" json:"notes"`
	CurrentStatus BillStatus      `gorm:"type:enum('Draft', 'Confirmed', 'Partial Paid', 'Paid', 'Void');not null" json:"current_status"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_paid"`
	AmountDue     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_due"`
	Items         []BillItem      `gorm:"foreignKey:BillId" json:"items"`
	CreatedBy     int             `json:"created_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type BillItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BillId      int             `gorm:"index;not null" json:"bill_id" binding:"required"`
	ProductId   int             `json:"product_id"`
	Description string          `gorm:"size:255" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	SortOrder   int             `gorm:"default:0" json:"sort_order"`
}

func CreateBillWithItems(tx *gorm.DB, bill *Bill) error {
	return tx.Create(bill).Error
}
