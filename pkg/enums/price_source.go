package enums

// PriceSource records which lookup tier produced a material unit price. None
// marks a degraded line whose price could not be resolved at all.
type PriceSource string

const (
	PriceSourceGroupLme       PriceSource = "group_lme"
	PriceSourceGroupStandard  PriceSource = "group_standard"
	PriceSourceGlobalLme      PriceSource = "global_lme"
	PriceSourceGlobalStandard PriceSource = "global_standard"
	PriceSourceNone           PriceSource = "none"
)

// String implements fmt.Stringer.
func (s PriceSource) String() string {
	return string(s)
}

// Missing reports whether the line priced without any master-data record.
func (s PriceSource) Missing() bool {
	return s == PriceSourceNone
}
