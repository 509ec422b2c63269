package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

// AcquireRecurringLock serializes firings per template across instances using
// MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB that will do the posting transaction.
func AcquireRecurringLock(tx *gorm.DB, businessId string, templateId int) error {
	lockName := fmt.Sprintf("recurring:%s:%d", businessId, templateId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire recurring lock for business_id=%s template_id=%d", businessId, templateId)
	}
	return nil
}

func ReleaseRecurringLock(tx *gorm.DB, businessId string, templateId int) {
	lockName := fmt.Sprintf("recurring:%s:%d", businessId, templateId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}
