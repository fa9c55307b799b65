package models

import "time"

// RecordRow is one stored record in the record service. Fields holds the
// record's flat JSON object verbatim, so collections can evolve their schema
// without migrations.
type RecordRow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Collection string    `gorm:"size:50;not null;uniqueIndex:idx_records_collection_record" json:"collection"`
	RecordID   string    `gorm:"column:record_id;size:100;not null;uniqueIndex:idx_records_collection_record" json:"record_id"`
	Fields     string    `gorm:"type:text" json:"fields"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (RecordRow) TableName() string { return "records" }
