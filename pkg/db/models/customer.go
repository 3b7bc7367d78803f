package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer maps to at most one customer group. A nil group resolves to the
// default group at calculation time.
type Customer struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Code            string         `gorm:"column:code;not null;uniqueIndex"`
	Name            string         `gorm:"column:name;not null"`
	CustomerGroupID *uuid.UUID     `gorm:"column:customer_group_id;type:uuid"`
	CustomerGroup   *CustomerGroup `gorm:"foreignKey:CustomerGroupID"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key for sqlite test databases.
func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
