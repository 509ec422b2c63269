package workflow

import (
	"time"

	"bitbucket.org/mmdatafocus/office_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaterializeBill mirrors MaterializeInvoice for the payable side. Bills
// carry no document-level discount.
func MaterializeBill(tx *gorm.DB, businessId string, runAt time.Time, payload *models.BillPayload, userId int) (int, error) {
	if err := payload.Validate(); err != nil {
		return 0, err
	}

	header := payload.Bill

	billNumber := header.BillNumber
	if billNumber == "" {
		billNumber = GenerateDocumentNumber("BILL", runAt)
	}
	billDate := runAt
	if header.BillDate != nil {
		billDate = *header.BillDate
	}
	dueDate := runAt.AddDate(0, 0, 30)
	if header.DueDate != nil {
		dueDate = *header.DueDate
	}

	items := make([]models.BillItem, len(payload.Items))
	for i, item := range payload.Items {
		lineAmount, taxAmount := ComputeLineAmounts(item)
		sortOrder := item.SortOrder
		if sortOrder == 0 {
			sortOrder = i + 1
		}
		items[i] = models.BillItem{
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
	totalAmount := ComputeDocumentTotal(subtotal, taxTotal, decimal.NewFromInt(0))

	bill := models.Bill{
		BusinessId:    businessId,
		VendorId:      header.VendorId,
		BranchId:      header.BranchId,
		BillNumber:    billNumber,
		BillDate:      billDate,
		BillDueDate:   dueDate,
		CurrencyCode:  header.CurrencyCode,
		ExchangeRate:  header.ExchangeRate,
		Notes:         header.Notes,
		CurrentStatus: models.BillStatusDraft,
		Subtotal:      subtotal,
		TaxAmount:     taxTotal,
		TotalAmount:   totalAmount,
		AmountPaid:    decimal.NewFromInt(0),
		AmountDue:     totalAmount,
		Items:         items,
		CreatedBy:     userId,
	}

	if err := models.CreateBillWithItems(tx, &bill); err != nil {
		return 0, err
	}
	return bill.ID, nil
}
