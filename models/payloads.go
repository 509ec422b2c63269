package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// A recurring template stores its document description as a JSON blob whose
// shape depends on DocumentType. Each shape is a distinct payload struct; the
// union is resolved once, by UnmarshalRecurringPayload, never by poking at
// loosely-typed maps further down.

type RecurringPayload interface {
	Validate() error
	recurringPayload()
}

type TransactionHeaderPayload struct {
	TransactionNumber string     `json:"transactionNumber"`
	TransactionDate   *time.Time `json:"transactionDate"`
	Description       string     `json:"description"`
	Notes             string     `json:"notes"`
}

type LedgerEntryPayload struct {
	AccountId    int             `json:"accountId"`
	EntryType    EntryType       `json:"entryType"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	Description  string          `json:"description"`
}

type JournalEntryPayload struct {
	Transaction   TransactionHeaderPayload `json:"transaction"`
	LedgerEntries []LedgerEntryPayload     `json:"ledgerEntries"`
}

func (p *JournalEntryPayload) recurringPayload() {}

func (p *JournalEntryPayload) Validate() error {
	if len(p.LedgerEntries) < 2 {
		return errors.New("journal entry payload requires at least two ledger entries")
	}
	debitTotal := decimal.NewFromInt(0)
	creditTotal := decimal.NewFromInt(0)
	for i, entry := range p.LedgerEntries {
		if entry.AccountId <= 0 {
			return fmt.Errorf("ledger entry %d: account id is required", i)
		}
		if entry.Amount.LessThanOrEqual(decimal.NewFromInt(0)) {
			return fmt.Errorf("ledger entry %d: amount must be positive", i)
		}
		switch entry.EntryType {
		case EntryTypeDebit:
			debitTotal = debitTotal.Add(entry.Amount)
		case EntryTypeCredit:
			creditTotal = creditTotal.Add(entry.Amount)
		default:
			return fmt.Errorf("ledger entry %d: invalid entry type %q", i, entry.EntryType)
		}
	}
	if !debitTotal.Equal(creditTotal) {
		return fmt.Errorf("journal entry is not balanced: debit %s != credit %s",
			debitTotal.String(), creditTotal.String())
	}
	return nil
}

type LineItemPayload struct {
	ProductId   int             `json:"productId"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	// Discount is carried onto the created item row for audit; totals are
	// driven by the document-level discount, not per line.
	Discount  decimal.Decimal `json:"discount"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	SortOrder int             `json:"sortOrder"`
}

func validateLineItems(items []LineItemPayload) error {
	if len(items) == 0 {
		return errors.New("at least one line item is required")
	}
	for i, item := range items {
		if item.Quantity.LessThanOrEqual(decimal.NewFromInt(0)) {
			return fmt.Errorf("line item %d: quantity must be positive", i)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("line item %d: unit price must not be negative", i)
		}
		if item.TaxRate.IsNegative() {
			return fmt.Errorf("line item %d: tax rate must not be negative", i)
		}
	}
	return nil
}

type InvoiceHeaderPayload struct {
	CustomerId    int             `json:"customerId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	InvoiceDate   *time.Time      `json:"invoiceDate"`
	DueDate       *time.Time      `json:"dueDate"`
	CurrencyCode  string          `json:"currency"`
	ExchangeRate  decimal.Decimal `json:"exchangeRate"`
	// DiscountType "P" reads DiscountAmount as a percentage of the subtotal;
	// anything else treats it as an absolute amount.
	DiscountType   string          `json:"discountType"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Notes          string          `json:"notes"`
	BranchId       int             `json:"branchId"`
}

type InvoicePayload struct {
	Invoice InvoiceHeaderPayload `json:"invoice"`
	Items   []LineItemPayload    `json:"items"`
}

func (p *InvoicePayload) recurringPayload() {}

func (p *InvoicePayload) Validate() error {
	if p.Invoice.CustomerId <= 0 {
		return errors.New("invoice payload requires a customer id")
	}
	if p.Invoice.DiscountAmount.IsNegative() {
		return errors.New("invoice discount amount must not be negative")
	}
	return validateLineItems(p.Items)
}

type BillHeaderPayload struct {
	VendorId     int             `json:"vendorId"`
	BillNumber   string          `json:"billNumber"`
	BillDate     *time.Time      `json:"billDate"`
	DueDate      *time.Time      `json:"dueDate"`
	CurrencyCode string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	Notes        string          `json:"notes"`
	BranchId     int             `json:"branchId"`
}

type BillPayload struct {
	Bill  BillHeaderPayload `json:"bill"`
	Items []LineItemPayload `json:"items"`
}

func (p *BillPayload) recurringPayload() {}

func (p *BillPayload) Validate() error {
	if p.Bill.VendorId <= 0 {
		return errors.New("bill payload requires a vendor id")
	}
	return validateLineItems(p.Items)
}

type PaymentRecordPayload struct {
	PaymentNumber   string          `json:"paymentNumber"`
	PaymentDate     *time.Time      `json:"paymentDate"`
	PaymentType     PaymentType     `json:"paymentType"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currency"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate"`
	PaymentMethod   string          `json:"paymentMethod"`
	ReferenceNumber string          `json:"referenceNumber"`
	BankAccountId   int             `json:"bankAccountId"`
	CustomerId      int             `json:"customerId"`
	VendorId        int             `json:"vendorId"`
	Notes           string          `json:"notes"`
}

type PaymentPayload struct {
	Payment PaymentRecordPayload `json:"payment"`
}

func (p *PaymentPayload) recurringPayload() {}

func (p *PaymentPayload) Validate() error {
	if !p.Payment.PaymentType.IsValid() {
		return fmt.Errorf("invalid payment type %q", p.Payment.PaymentType)
	}
	if p.Payment.Amount.LessThanOrEqual(decimal.NewFromInt(0)) {
		return errors.New("payment amount must be positive")
	}
	return nil
}

// UnmarshalRecurringPayload decodes raw into the payload variant selected by
// documentType. The decoded payload is NOT validated; callers that are about
// to persist or materialize must call Validate themselves.
func UnmarshalRecurringPayload(documentType DocumentType, raw string) (RecurringPayload, error) {
	var payload RecurringPayload
	switch documentType {
	case DocumentTypeJournalEntry:
		payload = &JournalEntryPayload{}
	case DocumentTypeInvoice:
		payload = &InvoicePayload{}
	case DocumentTypeBill:
		payload = &BillPayload{}
	case DocumentTypePayment:
		payload = &PaymentPayload{}
	default:
		return nil, fmt.Errorf("unsupported document type %q", documentType)
	}
	if err := json.Unmarshal([]byte(raw), payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", documentType, err)
	}
	return payload, nil
}
