package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
)

// Resolver maps a customer to the pricing group whose tables apply to them.
type Resolver struct {
	repo *Repository
}

// NewResolver builds a resolver over the customer repository.
func NewResolver(repo *Repository) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &Resolver{repo: repo}, nil
}

// ResolveGroup returns the group of the customer, falling back to the default
// group when the customer is unassigned or the assigned group is inactive. A
// missing default group is a configuration fault, not a pricing result.
func (r *Resolver) ResolveGroup(ctx context.Context, customerID uuid.UUID) (*models.CustomerGroup, error) {
	customer, err := r.repo.FindCustomerByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
	}

	if customer.CustomerGroup != nil && customer.CustomerGroup.IsActive {
		return customer.CustomerGroup, nil
	}

	group, err := r.repo.FindDefaultGroup(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "no default customer group is configured")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load default group")
	}
	return group, nil
}
