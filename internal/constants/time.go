package constants

import "time"

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// ConfigCacheTTL bounds how long a resolved work-week config is served from
	// memory before the settings rows are consulted again
	ConfigCacheTTL = 15 * time.Minute

	// DefaultWatchDebounce coalesces filesystem events for the watch daemon
	DefaultWatchDebounce = 500 * time.Millisecond
)
