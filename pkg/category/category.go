package category

// Category is one of the fixed spending categories every sorted expense
// is assigned to. The set is closed: there is no user-defined category
// management, matching the tabs of the frontend.
type Category string

const (
	EssentialMaintenance Category = "Essential Maintenance"
	GrowthInvestment     Category = "Growth / Investment"
	PlannedSocial        Category = "Planned Social"
	ImpulseComfort       Category = "Impulse/Comfort"
)

// All returns the categories in their display order.
func All() []Category {
	return []Category{
		EssentialMaintenance,
		GrowthInvestment,
		PlannedSocial,
		ImpulseComfort,
	}
}

// IsValid reports whether name is one of the fixed categories.
func IsValid(name string) bool {
	for _, c := range All() {
		if string(c) == name {
			return true
		}
	}
	return false
}
