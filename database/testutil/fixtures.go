package testutil

import (
	"fmt"
	"testing"

	"gorm.io/gorm"
)

// CountRows returns the number of rows in a table.
func CountRows(db *gorm.DB, table string) (int64, error) {
	var count int64
	err := db.Table(table).Count(&count).Error
	return count, err
}

// AssertRowCount fails the test if the table doesn't have the expected row count.
func AssertRowCount(t testing.TB, db *gorm.DB, table string, expected int64) {
	t.Helper()
	count, err := CountRows(db, table)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	if count != expected {
		t.Errorf("table %s row count = %d, want %d", table, count, expected)
	}
}

// TruncateTable removes all rows from a table.
func TruncateTable(db *gorm.DB, table string) error {
	if err := db.Exec(fmt.Sprintf("DELETE FROM %q", table)).Error; err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}
