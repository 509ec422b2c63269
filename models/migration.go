package models

import (
	"bitbucket.org/mmdatafocus/office_backend/config"
	"bitbucket.org/mmdatafocus/office_backend/utils"
)

// MigrateTable keeps the schema up to date for every table this module owns.
func MigrateTable() {
	db := config.GetDB()
	utils.ErrorPanic(db.AutoMigrate(
		&RecurringTemplate{},
		&RecurringExecution{},
		&Transaction{},
		&LedgerEntry{},
		&Invoice{},
		&InvoiceItem{},
		&Bill{},
		&BillItem{},
		&Payment{},
	))
}
