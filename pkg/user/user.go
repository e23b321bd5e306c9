package user

// FilterMode selects how the reporting window is chosen on the dashboard.
type FilterMode string

const (
	FilterByMonth  FilterMode = "month"
	FilterByPeriod FilterMode = "period"
)

type User struct {
	Id          int
	Uid         string
	Email       string
	DisplayName string
	Settings    Settings
}

// Settings are per-user preferences persisted between sessions.
type Settings struct {
	// IncludeUnsortedInTotal controls whether not-yet-categorized expenses
	// count toward the monthly spending total. Both behaviors shipped at
	// some point; this keeps the choice explicit per user.
	IncludeUnsortedInTotal bool
	// FilterMode, FilterMonth and FilterPeriodUid remember the active
	// reporting window. FilterMonth is "YYYY-MM"; FilterPeriodUid refers
	// to a salary period. Empty selections mean "no filter".
	FilterMode      FilterMode
	FilterMonth     string
	FilterPeriodUid string
}
