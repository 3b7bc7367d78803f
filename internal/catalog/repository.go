package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
)

// Repository persists products, raw materials, and bills of materials.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindProductByID loads a product without associations.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListBOM loads the bill of materials of a product with the referenced raw
// materials.
func (r *Repository) ListBOM(ctx context.Context, productID uuid.UUID) ([]models.BOMItem, error) {
	var items []models.BOMItem
	q := r.db.WithContext(ctx).
		Preload("RawMaterial").
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC")
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindRawMaterialByCode loads a raw material by its code.
func (r *Repository) FindRawMaterialByCode(ctx context.Context, code string) (*models.RawMaterial, error) {
	var material models.RawMaterial
	if err := r.db.WithContext(ctx).First(&material, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &material, nil
}
