package models

type DocumentType string

const (
	DocumentTypeJournalEntry DocumentType = "JournalEntry"
	DocumentTypeInvoice      DocumentType = "Invoice"
	DocumentTypeBill         DocumentType = "Bill"
	DocumentTypePayment      DocumentType = "Payment"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeJournalEntry, DocumentTypeInvoice, DocumentTypeBill, DocumentTypePayment:
		return true
	}
	return false
}

type RecurringFrequency string

const (
	RecurringFrequencyDaily      RecurringFrequency = "Daily"
	RecurringFrequencyWeekly     RecurringFrequency = "Weekly"
	RecurringFrequencyMonthly    RecurringFrequency = "Monthly"
	RecurringFrequencyQuarterly  RecurringFrequency = "Quarterly"
	RecurringFrequencyYearly     RecurringFrequency = "Yearly"
	RecurringFrequencyCustomCron RecurringFrequency = "CustomCron"
)

func (f RecurringFrequency) IsValid() bool {
	switch f {
	case RecurringFrequencyDaily, RecurringFrequencyWeekly, RecurringFrequencyMonthly,
		RecurringFrequencyQuarterly, RecurringFrequencyYearly, RecurringFrequencyCustomCron:
		return true
	}
	return false
}

type ExecutionStatus string

const (
	ExecutionStatusPending ExecutionStatus = "Pending"
	ExecutionStatusSuccess ExecutionStatus = "Success"
	ExecutionStatusFailed  ExecutionStatus = "Failed"
)

type EntryType string

const (
	EntryTypeDebit  EntryType = "Debit"
	EntryTypeCredit EntryType = "Credit"
)

type TransactionStatus string

const (
	TransactionStatusDraft  TransactionStatus = "Draft"
	TransactionStatusPosted TransactionStatus = "Posted"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft       InvoiceStatus = "Draft"
	InvoiceStatusConfirmed   InvoiceStatus = "Confirmed"
	InvoiceStatusPartialPaid InvoiceStatus = "Partial Paid"
	InvoiceStatusPaid        InvoiceStatus = "Paid"
	InvoiceStatusVoid        InvoiceStatus = "Void"
)

type BillStatus string

const (
	BillStatusDraft       BillStatus = "Draft"
	BillStatusConfirmed   BillStatus = "Confirmed"
	BillStatusPartialPaid BillStatus = "Partial Paid"
	BillStatusPaid        BillStatus = "Paid"
	BillStatusVoid        BillStatus = "Void"
)

type PaymentType string

const (
	PaymentTypeReceived PaymentType = "Received"
	PaymentTypeMade     PaymentType = "Made"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeReceived || t == PaymentTypeMade
}

type NotificationType string

const (
	NotificationTypeRecurringSuccess NotificationType = "RecurringSuccess"
	NotificationTypeRecurringFailed  NotificationType = "RecurringFailed"
)
