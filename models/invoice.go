package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BusinessId     string          `gorm:"index;not null" json:"business_id" binding:"required"`
	CustomerId     int             `gorm:"index;not null" json:"customer_id" binding:"required"`
	BranchId       int             `gorm:"index" json:"branch_id"`
	InvoiceNumber  string          `gorm:"size:255;not null" json:"invoice_number" binding:"required"`
	InvoiceDate    time.Time       `gorm:"not null" json:"invoice_date" binding:"required"`
	InvoiceDueDate time.Time       `gorm:"not null" json:"invoice_due_date"`
	CurrencyCode   string          `gorm:"size:3" json:"currency_code"`
	ExchangeRate   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"exchange_rate"`
	Notes          string          `gorm:"type:text;default:null" json:"notes"`
	CurrentStatus  InvoiceStatus   `gorm:"type:enum('Draft', 'Confirmed', 'Partial Paid', 'Paid', 'Void');not null" json:"current_status"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_paid"`
	AmountDue      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount_due"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceId" json:"items"`
	CreatedBy      int             `json:"created_by"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id" binding:"required"`
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

func CreateInvoiceWithItems(tx *gorm.DB, invoice *Invoice) error {
	return tx.Create(invoice).Error
}
