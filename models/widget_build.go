package models

import (
	"time"

	"gorm.io/gorm"
)

// Widget build statuses
const (
	BuildStatusReady  = "ready"
	BuildStatusFailed = "failed"
)

// WidgetBuild records the outcome of the last widget generation for an order
type WidgetBuild struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderNumber string         `gorm:"uniqueIndex;not null" json:"order_number"`
	Identifier  string         `gorm:"not null" json:"identifier"`
	Status      string         `gorm:"not null" json:"status"` // ready, failed
	PublicPath  *string        `json:"public_path"`            // nullable, set when the build succeeded
	ErrorCode   *string        `json:"error_code"`             // nullable, set when the build failed
	Attempts    int            `gorm:"not null;default:0" json:"attempts"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the WidgetBuild model
func (WidgetBuild) TableName() string {
	return "widget_builds"
}
