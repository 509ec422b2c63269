package workflow

import (
	"time"

	"bitbucket.org/mmdatafocus/office_backend/models"
	"bitbucket.org/mmdatafocus/office_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaterializeInvoice turns an invoice payload into one Draft invoice with its
// line items. Nothing is auto-sent or auto-confirmed: AmountPaid starts at
// zero and AmountDue at the full total.
func MaterializeInvoice(tx *gorm.DB, businessId string, runAt time.Time, payload *models.InvoicePayload, userId int) (int, error) {
	if err := payload.Validate(); err != nil {
		return 0, err
	}

	header := payload.Invoice

	invoiceNumber := header.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber = GenerateDocumentNumber("INV", runAt)
	}
	invoiceDate := runAt
	if header.InvoiceDate != nil {
		invoiceDate = *header.InvoiceDate
	}
	dueDate := runAt.AddDate(0, 0, 30)
	if header.DueDate != nil {
		dueDate = *header.DueDate
	}

	items := make([]models.InvoiceItem, len(payload.Items))
	for i, item := range payload.Items {
		lineAmount, taxAmount := ComputeLineAmounts(item)
		sortOrder := item.SortOrder
		if sortOrder == 0 {
			sortOrder = i + 1
		}
		items[i] = models.InvoiceItem{
			ProductId:   item.ProductId,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			TaxRate:     item.TaxRate,
			TaxAmount:   taxAmount,
			TotalAmount: lineAmount,
			SortOrder:   sortOrder,
		}
	}

	subtotal, taxTotal := ComputeDocumentTotals(payload.Items)
	discountAmount := utils.CalculateDiscountAmount(subtotal, header.DiscountAmount, header.DiscountType)
	totalAmount := ComputeDocumentTotal(subtotal, taxTotal, discountAmount)

	invoice := models.Invoice{
		BusinessId:     businessId,
		CustomerId:     header.CustomerId,
		BranchId:       header.BranchId,
		InvoiceNumber:  invoiceNumber,
		InvoiceDate:    invoiceDate,
		InvoiceDueDate: dueDate,
		CurrencyCode:   header.CurrencyCode,
		ExchangeRate:   header.ExchangeRate,
		Notes:          header.Notes,
		CurrentStatus:  models.InvoiceStatusDraft,
		Subtotal:       subtotal,
		TaxAmount:      taxTotal,
		DiscountAmount: discountAmount,
		TotalAmount:    totalAmount,
		AmountPaid:     decimal.NewFromInt(0),
		AmountDue:      totalAmount,
		Items:          items,
		CreatedBy:      userId,
	}

	if err := models.CreateInvoiceWithItems(tx, &invoice); err != nil {
		return 0, err
	}
	return invoice.ID, nil
}
