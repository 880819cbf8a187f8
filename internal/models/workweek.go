package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/weeklog/internal/constants"
)

// WorkWeekPreset names a canonical work-week shape.
type WorkWeekPreset string

const (
	PresetMondayFriday   WorkWeekPreset = "monday_friday"
	PresetSundayThursday WorkWeekPreset = "sunday_thursday"
	PresetCustom         WorkWeekPreset = "custom"
)

// IsNamed reports whether the preset is one of the named canonical shapes
// (anything other than custom).
func (p WorkWeekPreset) IsNamed() bool {
	return p == PresetMondayFriday || p == PresetSundayThursday
}

// Valid reports whether the preset is a known tag.
func (p WorkWeekPreset) Valid() bool {
	return p == PresetMondayFriday || p == PresetSundayThursday || p == PresetCustom
}

// PresetDays returns the canonical (start, end) day pair for a named preset.
// The boolean is false for custom or unknown presets, which have no canonical pair.
func PresetDays(p WorkWeekPreset) (start, end int, ok bool) {
	switch p {
	case PresetMondayFriday:
		return 1, 5, true
	case PresetSundayThursday:
		return 7, 4, true
	default:
		return 0, 0, false
	}
}

// WorkWeekConfig describes a work schedule. Days are ISO weekday numbers
// (1=Monday ... 7=Sunday) and are inclusive boundaries; a start day greater
// than the end day means the work week wraps across the calendar week
// boundary (e.g. Friday through Tuesday).
type WorkWeekConfig struct {
	Preset   WorkWeekPreset `json:"preset"`
	StartDay int            `json:"start_day"`
	EndDay   int            `json:"end_day"`
	Timezone string         `json:"timezone,omitempty"` // IANA name; empty or "Local" means the process-local timezone
}

// DefaultWorkWeekConfig returns the standard Monday through Friday schedule
// with no explicit timezone.
func DefaultWorkWeekConfig() WorkWeekConfig {
	return WorkWeekConfig{
		Preset:   PresetMondayFriday,
		StartDay: constants.DefaultWorkWeekStartDay,
		EndDay:   constants.DefaultWorkWeekEndDay,
	}
}

// ConfigToMap converts a WorkWeekConfig to flat settings rows. The timezone
// key is omitted when unset so that ConfigFromMap round-trips exactly.
func ConfigToMap(cfg WorkWeekConfig) map[string]string {
	m := map[string]string{
		constants.SettingWorkWeekPreset:   string(cfg.Preset),
		constants.SettingWorkWeekStartDay: strconv.Itoa(cfg.StartDay),
		constants.SettingWorkWeekEndDay:   strconv.Itoa(cfg.EndDay),
	}
	if cfg.Timezone != "" {
		m[constants.SettingWorkWeekTimezone] = cfg.Timezone
	}
	return m
}

// ConfigToSettings converts a WorkWeekConfig to the four persisted settings
// rows. Unlike ConfigToMap, an unset timezone is written explicitly as the
// default so that persisting a config always overwrites a previously stored
// zone row instead of leaving it behind.
func ConfigToSettings(cfg WorkWeekConfig) map[string]string {
	m := ConfigToMap(cfg)
	if _, ok := m[constants.SettingWorkWeekTimezone]; !ok {
		m[constants.SettingWorkWeekTimezone] = constants.DefaultTimezone
	}
	return m
}

// ConfigFromMap assembles a WorkWeekConfig from flat settings rows. Missing
// keys take the default for that field, so a partially-populated settings
// table reads the same as a fresh install. Unparseable day values are an
// error; domain checks beyond parsing belong to validation.
func ConfigFromMap(data map[string]string) (WorkWeekConfig, error) {
	cfg := DefaultWorkWeekConfig()

	if v, ok := data[constants.SettingWorkWeekPreset]; ok {
		cfg.Preset = WorkWeekPreset(v)
	}
	if v, ok := data[constants.SettingWorkWeekStartDay]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return WorkWeekConfig{}, fmt.Errorf("parsing %s: %w", constants.SettingWorkWeekStartDay, err)
		}
		cfg.StartDay = n
	}
	if v, ok := data[constants.SettingWorkWeekEndDay]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return WorkWeekConfig{}, fmt.Errorf("parsing %s: %w", constants.SettingWorkWeekEndDay, err)
		}
		cfg.EndDay = n
	}
	if v, ok := data[constants.SettingWorkWeekTimezone]; ok {
		cfg.Timezone = v
	}

	return cfg, nil
}
