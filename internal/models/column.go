package models

// Column is the physical row backing the column store: one column of one
// row of one column family.
type Column struct {
	Family    string `gorm:"primaryKey;size:64"`
	RowKey    string `gorm:"primaryKey;size:255"`
	Name      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	WrittenAt int64  `gorm:"not null"`
}

// TableName returns the table name for Column
func (Column) TableName() string {
	return "columns"
}
