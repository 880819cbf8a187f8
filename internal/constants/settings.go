package constants

const (
	// Work Week Settings
	SettingWorkWeekPreset   = "work_week.preset"
	SettingWorkWeekStartDay = "work_week.start_day"
	SettingWorkWeekEndDay   = "work_week.end_day"
	SettingWorkWeekTimezone = "work_week.timezone"

	// Default Settings Values
	DefaultWorkWeekStartDay = 1
	DefaultWorkWeekEndDay   = 5
	DefaultTimezone         = "Local" // Use system local timezone by default

	// DefaultScope is the config scope for a single-user install. Scopes are
	// a forward-compatibility hook, not a tenant boundary.
	DefaultScope = "default"

	// DefaultReindexBatchSize is the page size for the week-ending reindex job
	DefaultReindexBatchSize = 100
)
