package testutil

import "testing"

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func TestNewDB_Isolated(t *testing.T) {
	a := NewDB(t, &widget{})
	b := NewDB(t, &widget{})

	if err := a.GormDB.Create(&widget{Name: "one"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	AssertRowCount(t, a.GormDB, "widgets", 1)
	AssertRowCount(t, b.GormDB, "widgets", 0)

	if err := TruncateTable(a.GormDB, "widgets"); err != nil {
		t.Fatal(err)
	}
	AssertRowCount(t, a.GormDB, "widgets", 0)
}
