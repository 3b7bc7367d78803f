package controllers

import (
	"net/http"

	"github.com/kittipat-ch/pricebench-backend/api/responses"
	"github.com/kittipat-ch/pricebench-backend/internal/customers"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/logger"
)

// ListCustomerGroups returns every pricing group, default first.
func ListCustomerGroups(repo *customers.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := repo.ListGroups(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list customer groups"))
			return
		}
		responses.WriteSuccess(w, groups)
	}
}
