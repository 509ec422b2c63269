package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/office_backend/config"
	"bitbucket.org/mmdatafocus/office_backend/models"
	"bitbucket.org/mmdatafocus/office_backend/utils"
	"bitbucket.org/mmdatafocus/office_backend/workflow"
	"github.com/google/uuid"
)

// recurring-runner is the external trigger for the recurring document
// scheduler: it selects templates whose NextRunAt has arrived and fires them
// one at a time. Run it from cron with -once, or let it tick on its own.
func main() {
	once := flag.Bool("once", false, "Process due templates once and exit (for cron).")
	interval := flag.Duration("interval", time.Minute, "Polling interval when running continuously.")
	batchSize := flag.Int("batch-size", 50, "Maximum templates claimed per tick.")
	flag.Parse()

	// Explicit DB connect (config no longer connects DB in init()).
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	models.MigrateTable()

	notifier := &workflow.LogNotifier{Logger: config.GetLogger()}

	if *once {
		processDueTemplates(notifier, *batchSize)
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		processDueTemplates(notifier, *batchSize)
	}
}

func processDueTemplates(notifier workflow.Notifier, batchSize int) {
	ctx := context.Background()
	now := time.Now()

	templates, err := models.GetDueRecurringTemplates(ctx, now, batchSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list due templates: %v\n", err)
		return
	}

	for _, template := range templates {
		// Workflows are tenant-scoped; run each firing under its template's
		// business id, with a correlation id to tie the log lines and the
		// execution row together.
		runCtx := utils.SetBusinessIdInContext(ctx, template.BusinessId)
		runCtx = utils.SetUserIdInContext(runCtx, template.CreatedBy)
		runCtx = utils.SetCorrelationIdInContext(runCtx, uuid.NewString())

		runAt := now
		if template.NextRunAt != nil {
			runAt = *template.NextRunAt
		}

		var err error
		if template.ApprovalRequired != nil && *template.ApprovalRequired {
			_, err = workflow.CreatePendingExecution(runCtx, template.ID, runAt)
		} else {
			_, err = workflow.ExecuteTemplate(runCtx, notifier, template.ID, runAt)
		}
		if err != nil {
			// Claim races and materialization failures are already recorded
			// by the workflow; just surface them for the operator.
			fmt.Fprintf(os.Stderr, "template %d (%s): %v\n", template.ID, template.ProfileName, err)
		}
	}
}
