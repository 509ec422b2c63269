package workflow_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/mmdatafocus/office_backend/config"
	"bitbucket.org/mmdatafocus/office_backend/models"
	"bitbucket.org/mmdatafocus/office_backend/utils"
	"bitbucket.org/mmdatafocus/office_backend/workflow"
)

// Recurring engine scenarios against a real MySQL.
//
// Usage: INTEGRATION_TESTS=1 go test ./workflow -run Recurring -v
// with DB_USER/DB_PASSWORD/DB_HOST/DB_PORT/DB_NAME pointing at a disposable
// database; MigrateTable runs on entry.

func requireIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires mysql)")
	}

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetBusinessIdInContext(ctx, uuid.NewString())
	ctx = utils.SetUserIdInContext(ctx, 1)
	return ctx
}

func invoicePayloadJson() string {
	return `{
		"invoice": {"customerId": 7, "currency": "USD", "discountAmount": "5", "discountType": "P"},
		"items": [{"description": "Hosting", "quantity": "2", "unitPrice": "100", "discount": "5", "taxRate": "18"}]
	}`
}

func journalPayloadJson() string {
	return `{
		"transaction": {"description": "Monthly office rent"},
		"ledgerEntries": [
			{"accountId": 10, "entryType": "Debit", "amount": "1500"},
			{"accountId": 20, "entryType": "Credit", "amount": "1500"}
		]
	}`
}

func boolPtr(v bool) *bool { return &v }

func createTemplate(t *testing.T, ctx context.Context, input *models.NewRecurringTemplate) *models.RecurringTemplate {
	t.Helper()
	template, err := models.CreateRecurringTemplate(ctx, input)
	require.NoError(t, err)
	return template
}

// dueRunAt re-reads the template so the returned occurrence carries the
// DB-stored timestamp precision, exactly as a trigger would see it.
func dueRunAt(t *testing.T, ctx context.Context, templateId int) time.Time {
	t.Helper()
	template, err := models.GetRecurringTemplate(ctx, templateId)
	require.NoError(t, err)
	require.NotNil(t, template.NextRunAt)
	return *template.NextRunAt
}

func countDocuments(t *testing.T, ctx context.Context, model interface{}, businessId string) int64 {
	t.Helper()
	var count int64
	err := config.GetDB().WithContext(ctx).Model(model).
		Where("business_id = ?", businessId).Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestRecurringDirectFireCreatesJournal(t *testing.T) {
	ctx := requireIntegration(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	template := createTemplate(t, ctx, &models.NewRecurringTemplate{
		ProfileName:  "Office rent " + uuid.NewString()[:8],
		DocumentType: models.DocumentTypeJournalEntry,
		Frequency:    models.RecurringFrequencyMonthly,
		DayOfMonth:   1,
		Timezone:     "UTC",
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Payload:      journalPayloadJson(),
	})
	runAt := dueRunAt(t, ctx, template.ID)

	// Fire as a different user than the template creator, the way the runner
	// does, with a correlation id stamped on the context.
	correlationId := uuid.NewString()
	fireCtx := utils.SetUserIdInContext(ctx, 7)
	fireCtx = utils.SetCorrelationIdInContext(fireCtx, correlationId)

	execution, err := workflow.ExecuteTemplate(fireCtx, workflow.NoopNotifier{}, template.ID, runAt)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, execution.Status)
	assert.Equal(t, 1, execution.Attempt)
	assert.Equal(t, correlationId, execution.CorrelationId)
	assert.NotZero(t, execution.TransactionId)

	transaction, err := utils.FetchModel[models.Transaction](ctx, businessId, execution.TransactionId, "Entries")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPosted, transaction.CurrentStatus)
	assert.Equal(t, 7, transaction.CreatedBy, "document belongs to the firing user")
	assert.Len(t, transaction.Entries, 2)

	refreshed, err := models.GetRecurringTemplate(ctx, template.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.ExecutedCount)
	require.NotNil(t, refreshed.LastRunAt)
	assert.True(t, refreshed.LastRunAt.Equal(runAt))
	require.NotNil(t, refreshed.NextRunAt)
	assert.True(t, refreshed.NextRunAt.After(runAt))
}

func TestRecurringApprovalGate(t *testing.T) {
	ctx := requireIntegration(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	template := createTemplate(t, ctx, &models.NewRecurringTemplate{
		ProfileName:      "Hosting invoice " + uuid.NewString()[:8],
		DocumentType:     models.DocumentTypeInvoice,
		Frequency:        models.RecurringFrequencyDaily,
		Timezone:         "UTC",
		StartDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Payload:          invoicePayloadJson(),
		ApprovalRequired: boolPtr(true),
	})
	runAt := dueRunAt(t, ctx, template.ID)

	// Direct fire must refuse approval-gated templates.
	_, err := workflow.ExecuteTemplate(ctx, workflow.NoopNotifier{}, template.ID, runAt)
	require.Error(t, err)

	execution, err := workflow.CreatePendingExecution(ctx, template.ID, runAt)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusPending, execution.Status)
	assert.Equal(t, int64(0), countDocuments(t, ctx, &models.Invoice{}, businessId),
		"no invoice may exist before approval")

	parked, err := models.GetRecurringTemplate(ctx, template.ID)
	require.NoError(t, err)
	assert.Nil(t, parked.NextRunAt, "claimed template stays unscheduled while pending")

	approverCtx := utils.SetUserIdInContext(ctx, 42)
	approved, err := workflow.ExecutePendingExecution(approverCtx, workflow.NoopNotifier{}, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, approved.Status)
	assert.Equal(t, 42, approved.ApprovedBy)
	assert.NotZero(t, approved.InvoiceId)
	assert.Equal(t, int64(1), countDocuments(t, ctx, &models.Invoice{}, businessId))

	invoice, err := utils.FetchModel[models.Invoice](ctx, businessId, approved.InvoiceId, "Items")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusDraft, invoice.CurrentStatus)
	assert.Equal(t, 42, invoice.CreatedBy, "document belongs to the approver")
	// 2 x 100 at 18% tax minus a 5% document discount (10).
	assert.True(t, invoice.Subtotal.Equal(mustDecimal("200")), "subtotal %s", invoice.Subtotal)
	assert.True(t, invoice.TaxAmount.Equal(mustDecimal("36")), "tax %s", invoice.TaxAmount)
	assert.True(t, invoice.DiscountAmount.Equal(mustDecimal("10")), "discount %s", invoice.DiscountAmount)
	assert.True(t, invoice.TotalAmount.Equal(mustDecimal("226")), "total %s", invoice.TotalAmount)
	assert.True(t, invoice.AmountDue.Equal(invoice.TotalAmount))
	assert.True(t, invoice.AmountPaid.IsZero())
	require.Len(t, invoice.Items, 1)
	assert.True(t, invoice.Items[0].Discount.Equal(mustDecimal("5")),
		"line discount %s carried onto the item row", invoice.Items[0].Discount)

	// Approval is single-use.
	_, err = workflow.ExecutePendingExecution(approverCtx, workflow.NoopNotifier{}, execution.ID)
	require.ErrorIs(t, err, utils.ErrorExecutionNotPending)
	assert.Equal(t, int64(1), countDocuments(t, ctx, &models.Invoice{}, businessId),
		"second approval must not create a second invoice")

	advanced, err := models.GetRecurringTemplate(ctx, template.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, advanced.ExecutedCount)
	require.NotNil(t, advanced.NextRunAt)
	assert.True(t, advanced.NextRunAt.After(runAt))
}

func TestRecurringFailureLeavesLedgerRecordOnly(t *testing.T) {
	ctx := requireIntegration(t)
	businessId, _ := utils.GetBusinessIdFromContext(ctx)

	template := createTemplate(t, ctx, &models.NewRecurringTemplate{
		ProfileName:  "Broken journal " + uuid.NewString()[:8],
		DocumentType: models.DocumentTypeJournalEntry,
		Frequency:    models.RecurringFrequencyDaily,
		Timezone:     "UTC",
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Payload:      journalPayloadJson(),
	})
	runAt := dueRunAt(t, ctx, template.ID)

	// Corrupt the stored payload behind the validator's back: a single-entry
	// journal can never balance, so materialization must fail.
	corrupt := `{"transaction":{"description":"broken"},"ledgerEntries":[{"accountId":10,"entryType":"Debit","amount":"1500"}]}`
	err := config.GetDB().WithContext(ctx).Model(&models.RecurringTemplate{}).
		Where("id = ?", template.ID).Update("payload", corrupt).Error
	require.NoError(t, err)

	execution, err := workflow.ExecuteTemplate(ctx, workflow.NoopNotifier{}, template.ID, runAt)
	require.Error(t, err)
	require.NotNil(t, execution)
	assert.Equal(t, models.ExecutionStatusFailed, execution.Status)

	failed, err := models.GetRecurringExecution(ctx, execution.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Message)
	assert.Equal(t, corrupt, failed.PayloadSnapshot, "snapshot frozen at firing time")

	assert.Equal(t, int64(0), countDocuments(t, ctx, &models.Transaction{}, businessId),
		"rolled-back firing must not leave a document behind")

	refreshed, err := models.GetRecurringTemplate(ctx, template.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, refreshed.ExecutedCount)
	assert.Nil(t, refreshed.LastRunAt)
	require.NotNil(t, refreshed.NextRunAt)
	assert.True(t, refreshed.NextRunAt.Equal(runAt), "failed occurrence is not skipped forward")

	// Repair the payload and fire the same occurrence again: attempt 2.
	err = config.GetDB().WithContext(ctx).Model(&models.RecurringTemplate{}).
		Where("id = ?", template.ID).Update("payload", journalPayloadJson()).Error
	require.NoError(t, err)

	retried, err := workflow.ExecuteTemplate(ctx, workflow.NoopNotifier{}, template.ID, runAt)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, retried.Status)
	assert.Equal(t, 2, retried.Attempt)
}

func TestRecurringClaimExcludesConcurrentTrigger(t *testing.T) {
	ctx := requireIntegration(t)

	template := createTemplate(t, ctx, &models.NewRecurringTemplate{
		ProfileName:  "Daily payment " + uuid.NewString()[:8],
		DocumentType: models.DocumentTypePayment,
		Frequency:    models.RecurringFrequencyDaily,
		Timezone:     "UTC",
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Payload:      `{"payment": {"paymentType": "Received", "amount": "250", "customerId": 7}}`,
	})
	runAt := dueRunAt(t, ctx, template.ID)

	first, err := workflow.ExecuteTemplate(ctx, workflow.NoopNotifier{}, template.ID, runAt)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSuccess, first.Status)

	// A second trigger that read the template before the first firing still
	// holds the consumed NextRunAt; its compare-and-swap claim finds zero
	// matching rows and backs off.
	result := config.GetDB().WithContext(ctx).Model(&models.RecurringTemplate{}).
		Where("id = ? AND next_run_at = ?", template.ID, runAt).
		Update("next_run_at", nil)
	require.NoError(t, result.Error)
	assert.Equal(t, int64(0), result.RowsAffected, "stale trigger must lose the claim")

	executions, err := models.GetRecurringExecutions(ctx, template.ID)
	require.NoError(t, err)
	assert.Len(t, executions, 1, "only the claim winner recorded a firing")
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
