package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Transaction struct {
	ID                int               `gorm:"primary_key" json:"id"`
	BusinessId        string            `gorm:"index;not null" json:"business_id" binding:"required"`
	TransactionNumber string            `gorm:"size:255;not null" json:"transaction_number" binding:"required"`
	TransactionDate   time.Time         `gorm:"not null" json:"transaction_date" binding:"required"`
	Description       string            `gorm:"size:255" json:"description"`
	Notes             string            `gorm:"type:text" json:"notes"`
	CurrentStatus     TransactionStatus `gorm:"type:enum('Draft', 'Posted');not null" json:"current_status"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Entries           []LedgerEntry     `gorm:"foreignKey:TransactionId" json:"entries"`
	CreatedBy         int               `json:"created_by"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type LedgerEntry struct {
	ID            int             `gorm:"primary_key" json:"id"`
	TransactionId int             `gorm:"index;not null" json:"transaction_id" binding:"required"`
	AccountId     int             `gorm:"index;not null" json:"account_id" binding:"required"`
	EntryType     EntryType       `gorm:"type:enum('Debit', 'Credit');not null" json:"entry_type" binding:"required"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CurrencyCode  string          `gorm:"size:3" json:"currency_code"`
	ExchangeRate  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"exchange_rate"`
	Description   string          `gorm:"size:255" json:"description"`
}

// CreateTransactionWithEntries inserts the header and its ledger entries in
// one statement tree on the caller's transaction.
func CreateTransactionWithEntries(tx *gorm.DB, transaction *Transaction) error {
	return tx.Create(transaction).Error
}
