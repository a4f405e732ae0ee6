package model

type KV struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
	// ExpiresAt is empty for entries that never expire.
	ExpiresAt string `gorm:"column:expires_at;type:text;not null;default:''"`
}

func (KV) TableName() string {
	return "kv"
}
