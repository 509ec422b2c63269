package workflow

import (
	"time"

	"bitbucket.org/mmdatafocus/office_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaterializeJournalEntry turns a journal-entry payload into one Posted
// transaction with its ledger entries, created atomically on the caller's
// transaction. Recurring journal entries are never drafts.
func MaterializeJournalEntry(tx *gorm.DB, businessId string, runAt time.Time, payload *models.JournalEntryPayload, userId int) (int, error) {
	if err := payload.Validate(); err != nil {
		return 0, err
	}

	transactionNumber := payload.Transaction.TransactionNumber
	if transactionNumber == "" {
		transactionNumber = GenerateDocumentNumber("TXN", runAt)
	}
	transactionDate := runAt
	if payload.Transaction.TransactionDate != nil {
		transactionDate = *payload.Transaction.TransactionDate
	}

	totalAmount := decimal.NewFromInt(0)
	entries := make([]models.LedgerEntry, len(payload.LedgerEntries))
	for i, entry := range payload.LedgerEntries {
		if entry.EntryType == models.EntryTypeDebit {
			totalAmount = totalAmount.Add(entry.Amount)
		}
		entries[i] = models.LedgerEntry{
			AccountId:    entry.AccountId,
			EntryType:    entry.EntryType,
			Amount:       entry.Amount,
			CurrencyCode: entry.CurrencyCode,
			ExchangeRate: entry.ExchangeRate,
			Description:  entry.Description,
		}
	}

	transaction := models.Transaction{
		BusinessId:        businessId,
		TransactionNumber: transactionNumber,
		TransactionDate:   transactionDate,
		Description:       payload.Transaction.Description,
		Notes:             payload.Transaction.Notes,
		CurrentStatus:     models.TransactionStatusPosted,
		TotalAmount:       totalAmount,
		Entries:           entries,
		CreatedBy:         userId,
	}

	if err := models.CreateTransactionWithEntries(tx, &transaction); err != nil {
		return 0, err
	}
	return transaction.ID, nil
}
