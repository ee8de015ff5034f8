package domain

import "time"

// CatalogOpLog is an audit trail row for catalog mutations, written by the
// event bus subscriber and pruned by a daily job.
type CatalogOpLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Action    string    `gorm:"size:32;index" json:"action"` // "created", "updated", "deleted"
	Entity    string    `gorm:"size:32;index" json:"entity"` // "product", "tag", "category"
	EntityID  int64     `gorm:"index" json:"entity_id"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName returns table name
func (CatalogOpLog) TableName() string {
	return "catalog_op_log"
}
