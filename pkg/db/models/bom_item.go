package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BOMItem is one line of a product's bill of quantities: how much of a raw
// material one unit of the finished good consumes. The unit must match the
// raw material's unit; the calculation rejects mismatched lines.
type BOMItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	RawMaterialID uuid.UUID       `gorm:"column:raw_material_id;type:uuid;not null"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(18,6);not null"`
	Unit          string          `gorm:"column:unit;not null"`
	RawMaterial   *RawMaterial    `gorm:"foreignKey:RawMaterialID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key for sqlite test databases.
func (b *BOMItem) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
