package models

import "time"

// SettingModel is one row of the local pricing settings table
type SettingModel struct {
	Key       string    `gorm:"column:setting_key;primaryKey;size:191"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "storefront_settings"
}
