package models

import (
	"testing"

	"github.com/google/uuid"
)

// Every model persisted by the test suites runs on sqlite, which has no
// gen_random_uuid default, so each one must assign its own primary key.
func TestBeforeCreateAssignsPrimaryKeys(t *testing.T) {
	var (
		record   VersionedRecord
		rule     PricingRule
		product  Product
		group    CustomerGroup
		customer Customer
		material RawMaterial
		bomItem  BOMItem
	)
	hooks := map[string]func() uuid.UUID{
		"versioned_record": func() uuid.UUID { _ = record.BeforeCreate(nil); return record.ID },
		"pricing_rule":     func() uuid.UUID { _ = rule.BeforeCreate(nil); return rule.ID },
		"product":          func() uuid.UUID { _ = product.BeforeCreate(nil); return product.ID },
		"customer_group":   func() uuid.UUID { _ = group.BeforeCreate(nil); return group.ID },
		"customer":         func() uuid.UUID { _ = customer.BeforeCreate(nil); return customer.ID },
		"raw_material":     func() uuid.UUID { _ = material.BeforeCreate(nil); return material.ID },
		"bom_item":         func() uuid.UUID { _ = bomItem.BeforeCreate(nil); return bomItem.ID },
	}
	for name, create := range hooks {
		if id := create(); id == uuid.Nil {
			t.Fatalf("%s: BeforeCreate left the primary key unset", name)
		}
	}
}

func TestBeforeCreateKeepsExplicitID(t *testing.T) {
	id := uuid.New()
	product := Product{ID: id}
	if err := product.BeforeCreate(nil); err != nil {
		t.Fatalf("BeforeCreate: %v", err)
	}
	if product.ID != id {
		t.Fatalf("explicit id was replaced: got %s, want %s", product.ID, id)
	}
}
