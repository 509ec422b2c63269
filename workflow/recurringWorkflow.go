package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/office_backend/config"
	"bitbucket.org/mmdatafocus/office_backend/models"
	"bitbucket.org/mmdatafocus/office_backend/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// documentRef links a successful execution to the one document it created.
// Exactly one field is non-zero.
type documentRef struct {
	TransactionId int
	InvoiceId     int
	BillId        int
	PaymentId     int
}

func (r documentRef) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if r.TransactionId != 0 {
		cols["transaction_id"] = r.TransactionId
	}
	if r.InvoiceId != 0 {
		cols["invoice_id"] = r.InvoiceId
	}
	if r.BillId != 0 {
		cols["bill_id"] = r.BillId
	}
	if r.PaymentId != 0 {
		cols["payment_id"] = r.PaymentId
	}
	return cols
}

// materializeDocument resolves the payload union once and dispatches to the
// materializer for the template's document type. Errors are raised, never
// swallowed; the engine is the only layer that persists FAILED state.
func materializeDocument(tx *gorm.DB, businessId string, documentType models.DocumentType, runAt time.Time, snapshot string, userId int) (documentRef, error) {
	payload, err := models.UnmarshalRecurringPayload(documentType, snapshot)
	if err != nil {
		return documentRef{}, err
	}

	var ref documentRef
	switch p := payload.(type) {
	case *models.JournalEntryPayload:
		ref.TransactionId, err = MaterializeJournalEntry(tx, businessId, runAt, p, userId)
	case *models.InvoicePayload:
		ref.InvoiceId, err = MaterializeInvoice(tx, businessId, runAt, p, userId)
	case *models.BillPayload:
		ref.BillId, err = MaterializeBill(tx, businessId, runAt, p, userId)
	case *models.PaymentPayload:
		ref.PaymentId, err = MaterializePayment(tx, businessId, runAt, p, userId)
	default:
		return documentRef{}, utils.ErrorUnsupportedDocumentType
	}
	if err != nil {
		return documentRef{}, err
	}
	return ref, nil
}

// claimTemplate clears NextRunAt with a compare-and-swap so two concurrent
// triggers evaluating the same due template cannot both fire it. The loser
// sees zero rows affected and backs off.
func claimTemplate(db *gorm.DB, template *models.RecurringTemplate) error {
	if template.NextRunAt == nil {
		// Nothing to claim; manual fires and cron-driven templates are
		// serialized by the advisory lock alone.
		return nil
	}
	result := db.Model(&models.RecurringTemplate{}).
		Where("id = ? AND next_run_at = ?", template.ID, *template.NextRunAt).
		Update("next_run_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorTemplateClaimed
	}
	return nil
}

// restoreClaim puts the claimed NextRunAt back after a failed firing, so a
// failure never silently skips the occurrence forward.
func restoreClaim(db *gorm.DB, logger *logrus.Logger, template *models.RecurringTemplate) {
	if template.NextRunAt == nil {
		return
	}
	err := db.Model(&models.RecurringTemplate{}).
		Where("id = ? AND next_run_at IS NULL", template.ID).
		Update("next_run_at", *template.NextRunAt).Error
	if err != nil {
		config.LogError(logger, "recurringWorkflow.go", "restoreClaim", "RestoreNextRunAt", template.ID, err)
	}
}

const messageColumnLimit = 255

// truncateMessage fits an error message into the 255-char message column,
// trimming on rune boundaries so a multi-byte character is never split.
func truncateMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= messageColumnLimit {
		return message
	}
	return string(runes[:messageColumnLimit])
}

// firingCorrelationId reuses the caller's correlation id when one is set (the
// runner stamps one per firing) and mints a fresh one otherwise.
func firingCorrelationId(ctx context.Context) string {
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok && correlationId != "" {
		return correlationId
	}
	return uuid.NewString()
}

// markExecutionFailed finalizes the attempt row after a rollback. This is a
// separate write on purpose: the FAILED record must survive even though the
// document creation was rolled back.
func markExecutionFailed(db *gorm.DB, logger *logrus.Logger, executionId int, cause error) {
	message := truncateMessage(cause.Error())
	err := db.Model(&models.RecurringExecution{}).
		Where("id = ? AND status = ?", executionId, models.ExecutionStatusPending).
		Updates(map[string]interface{}{
			"status":       models.ExecutionStatusFailed,
			"message":      message,
			"error_detail": fmt.Sprintf("%+v", cause),
		}).Error
	if err != nil {
		config.LogError(logger, "recurringWorkflow.go", "markExecutionFailed", "UpdateExecution", executionId, err)
	}
}

func notify(ctx context.Context, logger *logrus.Logger, notifier Notifier, notificationType models.NotificationType, template *models.RecurringTemplate, subject string, body string) {
	if notifier == nil || template.CreatedBy == 0 {
		return
	}
	if err := notifier.Send(ctx, notificationType, template.CreatedBy, subject, body); err != nil {
		// Fire-and-forget: delivery problems never fail the firing.
		config.LogError(logger, "recurringWorkflow.go", "notify", string(notificationType), template.ID, err)
	}
}

// finalizeSuccess runs inside the posting transaction: it flips the Pending
// row to Success with the created document's id and advances the template's
// schedule state. The status transition is guarded so it can happen once.
func finalizeSuccess(tx *gorm.DB, template *models.RecurringTemplate, execution *models.RecurringExecution, ref documentRef, approverId int) error {
	cols := ref.columns()
	cols["status"] = models.ExecutionStatusSuccess
	if approverId != 0 {
		cols["approved_by"] = approverId
	}
	result := tx.Model(&models.RecurringExecution{}).
		Where("id = ? AND status = ?", execution.ID, models.ExecutionStatusPending).
		Updates(cols)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorExecutionNotPending
	}

	nextRunAt, err := template.ComputeNextRunAt(execution.RunAt)
	if err != nil {
		return err
	}
	return tx.Model(&models.RecurringTemplate{}).
		Where("id = ?", template.ID).
		Updates(map[string]interface{}{
			"executed_count": gorm.Expr("executed_count + 1"),
			"last_run_at":    execution.RunAt,
			"next_run_at":    nextRunAt,
		}).Error
}

// ExecuteTemplate is the direct-fire path for templates that do not require
// approval: claim the template, record a Pending attempt with a payload
// snapshot, materialize the document and finalize the attempt in one atomic
// unit of work. On failure the attempt is finalized as Failed in a separate
// write and the template's schedule state is left untouched.
func ExecuteTemplate(ctx context.Context, notifier Notifier, templateId int, runAt time.Time) (*models.RecurringExecution, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	template, err := utils.FetchModel[models.RecurringTemplate](ctx, businessId, templateId)
	if err != nil {
		return nil, err
	}
	if template.Active != nil && !*template.Active {
		return nil, errors.New("template is archived")
	}
	if template.ApprovalRequired != nil && *template.ApprovalRequired {
		return nil, errors.New("template requires approval; create a pending execution instead")
	}

	if err := claimTemplate(db.WithContext(ctx), template); err != nil {
		return nil, err
	}

	execution, err := models.CreateRecurringExecution(db.WithContext(ctx), template, runAt, firingCorrelationId(ctx))
	if err != nil {
		restoreClaim(db.WithContext(ctx), logger, template)
		return nil, err
	}

	ref, err := runMaterialization(ctx, db, template, execution, userId, 0)
	if err != nil {
		config.LogError(logger, "recurringWorkflow.go", "ExecuteTemplate", "Materialize", execution.ID, err)
		markExecutionFailed(db.WithContext(ctx), logger, execution.ID, err)
		restoreClaim(db.WithContext(ctx), logger, template)
		notify(ctx, logger, notifier, models.NotificationTypeRecurringFailed, template,
			fmt.Sprintf("Recurring profile %q failed", template.ProfileName),
			fmt.Sprintf("Firing for %s failed: %s", runAt.Format(time.RFC3339), err.Error()))
		execution.Status = models.ExecutionStatusFailed
		return execution, err
	}

	notify(ctx, logger, notifier, models.NotificationTypeRecurringSuccess, template,
		fmt.Sprintf("Recurring profile %q executed", template.ProfileName),
		fmt.Sprintf("Created %s document for %s", template.DocumentType, runAt.Format(time.RFC3339)))

	execution.Status = models.ExecutionStatusSuccess
	execution.TransactionId = ref.TransactionId
	execution.InvoiceId = ref.InvoiceId
	execution.BillId = ref.BillId
	execution.PaymentId = ref.PaymentId
	return execution, nil
}

// runMaterialization performs the atomic unit of work shared by both call
// paths: materialize from the frozen snapshot, finalize the execution row and
// advance the template, all serialized by the per-template advisory lock. The
// created document is attributed to actingUserId, falling back to the
// template's creator when the caller has no user context.
func runMaterialization(ctx context.Context, db *gorm.DB, template *models.RecurringTemplate, execution *models.RecurringExecution, actingUserId int, approverId int) (documentRef, error) {
	var ref documentRef
	creatorId := actingUserId
	if creatorId == 0 {
		creatorId = template.CreatedBy
	}
	// GET_LOCK is connection-scoped, so pin one connection for the whole
	// firing; the lock is released only after the transaction has committed,
	// never while the winner's writes are still invisible to peers.
	err := db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := AcquireRecurringLock(conn, template.BusinessId, template.ID); err != nil {
			return err
		}
		defer ReleaseRecurringLock(conn, template.BusinessId, template.ID)

		return conn.Transaction(func(tx *gorm.DB) error {
			var err error
			ref, err = materializeDocument(tx, template.BusinessId, template.DocumentType, execution.RunAt, execution.PayloadSnapshot, creatorId)
			if err != nil {
				return err
			}
			return finalizeSuccess(tx, template, execution, ref, approverId)
		})
	})
	if err != nil {
		return documentRef{}, err
	}
	return ref, nil
}

// CreatePendingExecution is the approval-gate path: when a template that
// requires approval becomes due, the trigger parks a Pending attempt with the
// payload frozen at firing time and stops. No materializer runs until an
// explicit approval calls ExecutePendingExecution.
func CreatePendingExecution(ctx context.Context, templateId int, runAt time.Time) (*models.RecurringExecution, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	template, err := utils.FetchModel[models.RecurringTemplate](ctx, businessId, templateId)
	if err != nil {
		return nil, err
	}
	if template.Active != nil && !*template.Active {
		return nil, errors.New("template is archived")
	}
	if template.ApprovalRequired == nil || !*template.ApprovalRequired {
		return nil, errors.New("template does not require approval; execute it directly")
	}

	if err := claimTemplate(db.WithContext(ctx), template); err != nil {
		return nil, err
	}

	execution, err := models.CreateRecurringExecution(db.WithContext(ctx), template, runAt, firingCorrelationId(ctx))
	if err != nil {
		restoreClaim(db.WithContext(ctx), logger, template)
		return nil, err
	}
	return execution, nil
}

// ExecutePendingExecution is the approved-fire path. It materializes from the
// execution's frozen payload snapshot, never the live template payload:
// approval is over what was actually proposed. Approval is single-use; a
// second call finds the row terminal and is rejected.
func ExecutePendingExecution(ctx context.Context, notifier Notifier, executionId int) (*models.RecurringExecution, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	approverId, _ := utils.GetUserIdFromContext(ctx)

	execution, err := utils.FetchModel[models.RecurringExecution](ctx, businessId, executionId)
	if err != nil {
		return nil, err
	}
	if execution.Status != models.ExecutionStatusPending {
		return nil, utils.ErrorExecutionNotPending
	}

	template, err := utils.FetchModel[models.RecurringTemplate](ctx, businessId, execution.TemplateId)
	if err != nil {
		return nil, err
	}

	ref, err := runMaterialization(ctx, db, template, execution, approverId, approverId)
	if err != nil {
		if errors.Is(err, utils.ErrorExecutionNotPending) {
			// Lost the race to another approval; nothing to finalize.
			return nil, err
		}
		config.LogError(logger, "recurringWorkflow.go", "ExecutePendingExecution", "Materialize", execution.ID, err)
		markExecutionFailed(db.WithContext(ctx), logger, execution.ID, err)
		notify(ctx, logger, notifier, models.NotificationTypeRecurringFailed, template,
			fmt.Sprintf("Recurring profile %q failed", template.ProfileName),
			fmt.Sprintf("Approved firing for %s failed: %s", execution.RunAt.Format(time.RFC3339), err.Error()))
		execution.Status = models.ExecutionStatusFailed
		return execution, err
	}

	notify(ctx, logger, notifier, models.NotificationTypeRecurringSuccess, template,
		fmt.Sprintf("Recurring profile %q executed", template.ProfileName),
		fmt.Sprintf("Created %s document for %s", template.DocumentType, execution.RunAt.Format(time.RFC3339)))

	execution.Status = models.ExecutionStatusSuccess
	execution.ApprovedBy = approverId
	execution.TransactionId = ref.TransactionId
	execution.InvoiceId = ref.InvoiceId
	execution.BillId = ref.BillId
	execution.PaymentId = ref.PaymentId
	return execution, nil
}
