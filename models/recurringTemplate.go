package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/office_backend/config"
	"bitbucket.org/mmdatafocus/office_backend/utils"
	"github.com/robfig/cron/v3"
)

type RecurringTemplate struct {
	ID               int                `gorm:"primary_key" json:"id"`
	BusinessId       string             `gorm:"index;not null" json:"business_id" binding:"required"`
	ProfileName      string             `gorm:"size:100;not null" json:"profile_name" binding:"required"`
	DocumentType     DocumentType       `gorm:"type:enum('JournalEntry', 'Invoice', 'Bill', 'Payment');not null" json:"document_type" binding:"required"`
	Frequency        RecurringFrequency `gorm:"type:enum('Daily', 'Weekly', 'Monthly', 'Quarterly', 'Yearly', 'CustomCron');not null" json:"frequency" binding:"required"`
	Weekday          int                `gorm:"default:0" json:"weekday"`
	DayOfMonth       int                `gorm:"default:0" json:"day_of_month"`
	CronExpression   string             `gorm:"size:100;default:null" json:"cron_expression"`
	Timezone         string             `gorm:"size:64;not null" json:"timezone" binding:"required"`
	StartDate        time.Time          `gorm:"not null" json:"start_date" binding:"required"`
	EndDate          *time.Time         `gorm:"default:null" json:"end_date"`
	Payload          string             `gorm:"type:text;not null" json:"payload" binding:"required"`
	ApprovalRequired *bool              `gorm:"default:false" json:"approval_required"`
	LastRunAt        *time.Time         `gorm:"default:null" json:"last_run_at"`
	NextRunAt        *time.Time         `gorm:"index;default:null" json:"next_run_at"`
	ExecutedCount    int                `gorm:"default:0" json:"executed_count"`
	Active           *bool              `gorm:"default:true" json:"active"`
	CreatedBy        int                `json:"created_by"`
	CreatedAt        time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRecurringTemplate struct {
	ProfileName      string             `json:"profile_name" binding:"required"`
	DocumentType     DocumentType       `json:"document_type" binding:"required"`
	Frequency        RecurringFrequency `json:"frequency" binding:"required"`
	Weekday          int                `json:"weekday"`
	DayOfMonth       int                `json:"day_of_month"`
	CronExpression   string             `json:"cron_expression"`
	Timezone         string             `json:"timezone" binding:"required"`
	StartDate        time.Time          `json:"start_date" binding:"required"`
	EndDate          *time.Time         `json:"end_date"`
	Payload          string             `json:"payload" binding:"required"`
	ApprovalRequired *bool              `json:"approval_required"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewRecurringTemplate) validate(ctx context.Context, businessId string, id int) error {
	if err := utils.ValidateUnique[RecurringTemplate](ctx, businessId, "profile_name", input.ProfileName, id); err != nil {
		return err
	}
	if !input.DocumentType.IsValid() {
		return fmt.Errorf("invalid document type %q", input.DocumentType)
	}
	if !input.Frequency.IsValid() {
		return fmt.Errorf("invalid frequency %q", input.Frequency)
	}
	switch input.Frequency {
	case RecurringFrequencyWeekly:
		if input.Weekday < 0 || input.Weekday > 6 {
			return fmt.Errorf("weekday must be 0-6, got %d", input.Weekday)
		}
	case RecurringFrequencyMonthly:
		if input.DayOfMonth < 1 || input.DayOfMonth > 31 {
			return fmt.Errorf("day of month must be 1-31, got %d", input.DayOfMonth)
		}
	case RecurringFrequencyCustomCron:
		// Next occurrences of cron templates are evaluated by an external
		// scheduler; we still reject malformed expressions up front.
		if _, err := cron.ParseStandard(input.CronExpression); err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", input.CronExpression, err)
		}
	}
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", input.Timezone, err)
	}
	if input.EndDate != nil && !input.EndDate.After(input.StartDate) {
		return errors.New("end date must be after start date")
	}
	payload, err := UnmarshalRecurringPayload(input.DocumentType, input.Payload)
	if err != nil {
		return err
	}
	return payload.Validate()
}

func CreateRecurringTemplate(ctx context.Context, input *NewRecurringTemplate) (*RecurringTemplate, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	template := RecurringTemplate{
		BusinessId:       businessId,
		ProfileName:      input.ProfileName,
		DocumentType:     input.DocumentType,
		Frequency:        input.Frequency,
		Weekday:          input.Weekday,
		DayOfMonth:       input.DayOfMonth,
		CronExpression:   input.CronExpression,
		Timezone:         input.Timezone,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Payload:          input.Payload,
		ApprovalRequired: input.ApprovalRequired,
		CreatedBy:        userId,
	}

	nextRunAt, err := template.ComputeNextRunAt(time.Now())
	if err != nil {
		return nil, err
	}
	template.NextRunAt = nextRunAt

	if err := db.WithContext(ctx).Create(&template).Error; err != nil {
		return nil, err
	}

	return &template, nil
}

func UpdateRecurringTemplate(ctx context.Context, id int, input *NewRecurringTemplate) (*RecurringTemplate, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	if err := input.validate(ctx, businessId, id); err != nil {
		return nil, err
	}

	template, err := utils.FetchModel[RecurringTemplate](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	template.ProfileName = input.ProfileName
	template.DocumentType = input.DocumentType
	template.Frequency = input.Frequency
	template.Weekday = input.Weekday
	template.DayOfMonth = input.DayOfMonth
	template.CronExpression = input.CronExpression
	template.Timezone = input.Timezone
	template.StartDate = input.StartDate
	template.EndDate = input.EndDate
	template.Payload = input.Payload
	template.ApprovalRequired = input.ApprovalRequired

	// Frequency or payload edits must reschedule; a stale NextRunAt from the
	// old frequency would fire the wrong occurrence.
	nextRunAt, err := template.ComputeNextRunAt(time.Now())
	if err != nil {
		return nil, err
	}
	template.NextRunAt = nextRunAt

	if err := db.WithContext(ctx).Save(template).Error; err != nil {
		return nil, err
	}

	return template, nil
}

// ArchiveRecurringTemplate soft-archives the template: it stops being
// scheduled but stays referenceable by its execution history.
func ArchiveRecurringTemplate(ctx context.Context, id int) (*RecurringTemplate, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	template, err := utils.FetchModel[RecurringTemplate](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	inactive := false
	if err := db.WithContext(ctx).Model(template).
		Updates(map[string]interface{}{"active": &inactive, "next_run_at": nil}).Error; err != nil {
		return nil, err
	}
	template.Active = &inactive
	template.NextRunAt = nil

	return template, nil
}

func DeleteRecurringTemplate(ctx context.Context, id int) (*RecurringTemplate, error) {
	db := config.GetDB()

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	template, err := utils.FetchModel[RecurringTemplate](ctx, businessId, id)
	if err != nil {
		return nil, err
	}

	// Hard delete only while nothing references the template; with history
	// present, archive instead.
	count, err := utils.ResourceCountWhere[RecurringExecution](ctx, businessId, "template_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("template has executions; archive instead")
	}

	if err := db.WithContext(ctx).Delete(template).Error; err != nil {
		return nil, err
	}

	return template, nil
}

func GetRecurringTemplate(ctx context.Context, id int) (*RecurringTemplate, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	return utils.FetchModel[RecurringTemplate](ctx, businessId, id)
}

func GetRecurringTemplates(ctx context.Context, profileName *string) ([]*RecurringTemplate, error) {
	db := config.GetDB()
	var results []*RecurringTemplate

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	dbCtx := db.WithContext(ctx).Where("business_id = ?", businessId)
	if profileName != nil && len(*profileName) > 0 {
		dbCtx = dbCtx.Where("profile_name LIKE ?", "%"+*profileName+"%")
	}
	if err := dbCtx.Order("profile_name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetDueRecurringTemplates returns active templates whose NextRunAt has
// arrived, across tenants. The runner calls this; firing itself happens one
// template at a time through the workflow package.
func GetDueRecurringTemplates(ctx context.Context, now time.Time, limit int) ([]*RecurringTemplate, error) {
	db := config.GetDB()
	var results []*RecurringTemplate
	err := db.WithContext(ctx).
		Where("active = ? AND next_run_at IS NOT NULL AND next_run_at <= ?", true, now).
		Order("next_run_at").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
