package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Payment struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"index;not null" json:"business_id" binding:"required"`
	PaymentNumber   string          `gorm:"size:255;not null" json:"payment_number" binding:"required"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date" binding:"required"`
	PaymentType     PaymentType     `gorm:"type:enum('Received', 'Made');not null" json:"payment_type" binding:"required"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount" binding:"required"`
	CurrencyCode    string          `gorm:"size:3" json:"currency_code"`
	ExchangeRate    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"exchange_rate"`
	PaymentMethod   string          `gorm:"size:100" json:"payment_method"`
	ReferenceNumber string          `gorm:"size:255;default:null" json:"reference_number"`
	BankAccountId   int             `gorm:"default:null" json:"bank_account_id"`
	CustomerId      int             `gorm:"default:null" json:"customer_id"`
	VendorId        int             `gorm:"default:null" json:"vendor_id"`
	Notes           string          `gorm:"type:text;default:null" json:"notes"`
	CreatedBy       int             `json:"created_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func CreatePayment(tx *gorm.DB, payment *Payment) error {
	return tx.Create(payment).Error
}
