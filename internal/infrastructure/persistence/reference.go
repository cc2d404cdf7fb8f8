package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// nextReference generates the next sequential document reference of the form
// <prefix>-YYYYMM-NNNN by scanning the highest existing reference for the
// current month. Uniqueness is ultimately enforced by the unique index on the
// reference column.
func nextReference(ctx context.Context, db *gorm.DB, table, prefix string) (string, error) {
	monthPrefix := fmt.Sprintf("%s-%s-", prefix, time.Now().Format("200601"))

	var last string
	err := db.WithContext(ctx).
		Table(table).
		Select("reference").
		Where("reference LIKE ?", monthPrefix+"%").
		Order("reference DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	next := 1
	if last != "" {
		var num int
		if _, err := fmt.Sscanf(strings.TrimPrefix(last, monthPrefix), "%d", &num); err == nil {
			next = num + 1
		}
	}

	return fmt.Sprintf("%s%04d", monthPrefix, next), nil
}
