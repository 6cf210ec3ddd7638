package models

import "time"

// SettingType tags how a stored setting value is interpreted
type SettingType string

const (
	SettingString  SettingType = "string"
	SettingInteger SettingType = "integer"
	SettingFloat   SettingType = "float"
	SettingBoolean SettingType = "boolean"
	SettingJSON    SettingType = "json"
)

type Setting struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	Key         string      `json:"key" gorm:"size:100;uniqueIndex;not null"`
	Value       string      `json:"value"`
	Type        SettingType `json:"type" gorm:"size:20;not null;default:'string'"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ActivityLog struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      *uint     `json:"user_id" gorm:"index"`
	User        *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Action      string    `json:"action" gorm:"size:64;not null;index"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address" gorm:"size:45"`
	CreatedAt   time.Time `json:"created_at"`
}
