package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/office_backend/config"
	"bitbucket.org/mmdatafocus/office_backend/utils"
	"gorm.io/gorm"
)

// RecurringExecution is the durable ledger of firing attempts: one row per
// attempt, immutable once terminal. Only Pending rows may transition, and
// every transition is a guarded UPDATE on status so a row can be finalized
// exactly once.
type RecurringExecution struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"index;not null" json:"business_id" binding:"required"`
	TemplateId      int             `gorm:"index;not null" json:"template_id" binding:"required"`
	RunAt           time.Time       `gorm:"not null" json:"run_at" binding:"required"`
	Status          ExecutionStatus `gorm:"type:enum('Pending', 'Success', 'Failed');not null" json:"status"`
	Attempt         int             `gorm:"default:1" json:"attempt"`
	PayloadSnapshot string          `gorm:"type:text;not null" json:"payload_snapshot"`
	CorrelationId   string          `gorm:"size:36" json:"correlation_id"`
	TransactionId   int             `gorm:"default:null" json:"transaction_id"`
	InvoiceId       int             `gorm:"default:null" json:"invoice_id"`
	BillId          int             `gorm:"default:null" json:"bill_id"`
	PaymentId       int             `gorm:"default:null" json:"payment_id"`
	Message         string          `gorm:"size:255;default:null" json:"message"`
	ErrorDetail     string          `gorm:"type:text;default:null" json:"error_detail"`
	ApprovedBy      int             `gorm:"default:null" json:"approved_by"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CreateRecurringExecution inserts a Pending attempt row with the template's
// payload frozen into PayloadSnapshot. Attempt numbers count prior attempts
// for the same occurrence, so a re-triggered failure keeps its full history.
func CreateRecurringExecution(tx *gorm.DB, template *RecurringTemplate, runAt time.Time, correlationId string) (*RecurringExecution, error) {
	var prior int64
	if err := tx.Model(&RecurringExecution{}).
		Where("template_id = ? AND run_at = ?", template.ID, runAt).
		Count(&prior).Error; err != nil {
		return nil, err
	}

	execution := RecurringExecution{
		BusinessId:      template.BusinessId,
		TemplateId:      template.ID,
		RunAt:           runAt,
		Status:          ExecutionStatusPending,
		Attempt:         int(prior) + 1,
		PayloadSnapshot: template.Payload,
		CorrelationId:   correlationId,
	}
	if err := tx.Create(&execution).Error; err != nil {
		return nil, err
	}
	return &execution, nil
}

func GetRecurringExecution(ctx context.Context, id int) (*RecurringExecution, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[RecurringExecution](ctx, businessId, id)
}

func GetRecurringExecutions(ctx context.Context, templateId int) ([]*RecurringExecution, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var results []*RecurringExecution
	err := db.WithContext(ctx).
		Where("business_id = ? AND template_id = ?", businessId, templateId).
		Order("run_at DESC, attempt DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
