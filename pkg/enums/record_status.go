package enums

import "fmt"

// RecordStatus is the lifecycle state of a versioned master-data record.
type RecordStatus string

const (
	RecordStatusDraft    RecordStatus = "draft"
	RecordStatusActive   RecordStatus = "active"
	RecordStatusArchived RecordStatus = "archived"
)

var validRecordStatuses = []RecordStatus{
	RecordStatusDraft,
	RecordStatusActive,
	RecordStatusArchived,
}

// String implements fmt.Stringer.
func (s RecordStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is recognized.
func (s RecordStatus) IsValid() bool {
	for _, candidate := range validRecordStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRecordStatus converts a raw string into a RecordStatus.
func ParseRecordStatus(value string) (RecordStatus, error) {
	for _, candidate := range validRecordStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid record status %q", value)
}
