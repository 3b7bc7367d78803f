package masterdata

import "github.com/google/uuid"

// Scope addresses either the global pricing table or a customer-group
// specific one. The zero value is the global scope.
type Scope struct {
	GroupID *uuid.UUID
}

// GlobalScope returns the scope shared by all customers.
func GlobalScope() Scope {
	return Scope{}
}

// GroupScope returns the scope of a single customer group.
func GroupScope(id uuid.UUID) Scope {
	return Scope{GroupID: &id}
}

// IsGlobal reports whether the scope is the shared one.
func (s Scope) IsGlobal() bool {
	return s.GroupID == nil
}

func (s Scope) String() string {
	if s.GroupID == nil {
		return "global"
	}
	return s.GroupID.String()
}
