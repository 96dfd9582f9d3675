package models

import "time"

// StorageEntry is one slot of the durable key-value store.
type StorageEntry struct {
	Key       string    `gorm:"column:slot_key;primaryKey;size:191" json:"key"`
	Value     []byte    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name used by the storage binding.
func (StorageEntry) TableName() string {
	return "storage_entries"
}
