package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RawMaterial is the leaf cost unit of a bill of quantities. ItemGroup links
// the material to a commodity-indexed LME price; Code is the entity key of
// its standard price records.
type RawMaterial struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;not null"`
	Unit      string    `gorm:"column:unit;not null"`
	ItemGroup string    `gorm:"column:item_group"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key for sqlite test databases.
func (m *RawMaterial) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
