package enums

import "fmt"

// EntityType discriminates the master-data record families managed by the
// version store. Each type carries its own payload schema.
type EntityType string

const (
	EntityTypeStandardPrice EntityType = "standard_price"
	EntityTypeFabCost       EntityType = "fab_cost"
	EntityTypeSellingFactor EntityType = "selling_factor"
	EntityTypeLmePrice      EntityType = "lme_price"
	EntityTypeExchangeRate  EntityType = "exchange_rate"
)

var validEntityTypes = []EntityType{
	EntityTypeStandardPrice,
	EntityTypeFabCost,
	EntityTypeSellingFactor,
	EntityTypeLmePrice,
	EntityTypeExchangeRate,
}

// String implements fmt.Stringer.
func (e EntityType) String() string {
	return string(e)
}

// IsValid reports whether the entity type is recognized.
func (e EntityType) IsValid() bool {
	for _, candidate := range validEntityTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEntityType converts a raw string into an EntityType.
func ParseEntityType(value string) (EntityType, error) {
	for _, candidate := range validEntityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity type %q", value)
}
