package workflow

import (
	"time"

	"bitbucket.org/mmdatafocus/office_backend/models"
	"gorm.io/gorm"
)

// MaterializePayment creates one payment record from the payload. No
// aggregation happens here; the amount is taken as given.
func MaterializePayment(tx *gorm.DB, businessId string, runAt time.Time, payload *models.PaymentPayload, userId int) (int, error) {
	if err := payload.Validate(); err != nil {
		return 0, err
	}

	record := payload.Payment

	paymentNumber := record.PaymentNumber
	if paymentNumber == "" {
		paymentNumber = GenerateDocumentNumber("PAY", runAt)
	}
	paymentDate := runAt
	if record.PaymentDate != nil {
		paymentDate = *record.PaymentDate
	}

	payment := models.Payment{
		BusinessId:      businessId,
		PaymentNumber:   paymentNumber,
		PaymentDate:     paymentDate,
		PaymentType:     record.PaymentType,
		Amount:          record.Amount,
		CurrencyCode:    record.CurrencyCode,
		ExchangeRate:    record.ExchangeRate,
		PaymentMethod:   record.PaymentMethod,
		ReferenceNumber: record.ReferenceNumber,
		BankAccountId:   record.BankAccountId,
		CustomerId:      record.CustomerId,
		VendorId:        record.VendorId,
		Notes:           record.Notes,
		CreatedBy:       userId,
	}

	if err := models.CreatePayment(tx, &payment); err != nil {
		return 0, err
	}
	return payment.ID, nil
}
