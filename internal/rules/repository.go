package rules

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
)

// Repository persists pricing rules.
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

// Create inserts a new rule.
func (r *Repository) Create(ctx context.Context, rule *models.PricingRule) (*models.PricingRule, error) {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// Save persists all fields of an existing rule.
func (r *Repository) Save(ctx context.Context, rule *models.PricingRule) (*models.PricingRule, error) {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// Delete removes a rule by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PricingRule{}, "id = ?", id).Error
}

// FindByID loads a rule by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PricingRule, error) {
	var rule models.PricingRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// List returns every rule, highest priority first with id as tiebreaker so
// the order is reproducible.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.PricingRule, error) {
	q := r.db.WithContext(ctx).Order("priority DESC, id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var rules []models.PricingRule
	if err := q.Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}
