package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
)

// Repository persists customers and customer groups.
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

// FindCustomerByID loads a customer with its group.
func (r *Repository) FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Preload("CustomerGroup").First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindGroupByID loads a customer group.
func (r *Repository) FindGroupByID(ctx context.Context, id uuid.UUID) (*models.CustomerGroup, error) {
	var group models.CustomerGroup
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// FindDefaultGroup loads the single default group.
func (r *Repository) FindDefaultGroup(ctx context.Context) (*models.CustomerGroup, error) {
	var group models.CustomerGroup
	if err := r.db.WithContext(ctx).First(&group, "is_default = ?", true).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// ListGroups returns all groups ordered by name.
func (r *Repository) ListGroups(ctx context.Context) ([]models.CustomerGroup, error) {
	var groups []models.CustomerGroup
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
