// Package workweek maps calendar dates to week-ending buckets under a
// configurable work schedule. It owns config validation, the week-ending
// calculation, and the service that resolves configs from the settings store.
package workweek

import (
	"fmt"

	"github.com/julianstephens/weeklog/internal/logger"
	"github.com/julianstephens/weeklog/internal/models"
)

// ValidationError reports a work-week day value outside 1..7. It is the only
// config problem that is rejected rather than auto-corrected.
type ValidationError struct {
	Field string
	Value int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid work week config: %s must be between 1 and 7, got %d", e.Field, e.Value)
}

// ValidateConfig checks and auto-corrects a work-week config:
//
//   - day values outside 1..7 are rejected with a ValidationError
//   - identical start and end days are corrected by advancing the end day
//     one weekday (wrapping Sunday to Monday) and forcing the custom preset
//   - a named preset whose day pair is not its canonical pair is silently
//     reclassified as custom; the caller's day values win
//
// It returns the corrected config, never the original invalid one.
func ValidateConfig(cfg models.WorkWeekConfig) (models.WorkWeekConfig, error) {
	if cfg.StartDay < 1 || cfg.StartDay > 7 {
		return models.WorkWeekConfig{}, &ValidationError{Field: "start_day", Value: cfg.StartDay}
	}
	if cfg.EndDay < 1 || cfg.EndDay > 7 {
		return models.WorkWeekConfig{}, &ValidationError{Field: "end_day", Value: cfg.EndDay}
	}

	if cfg.StartDay == cfg.EndDay {
		corrected := (cfg.EndDay % 7) + 1
		logger.Warn("Work week start and end days are identical, auto-correcting",
			"start_day", cfg.StartDay, "end_day", cfg.EndDay, "corrected_end_day", corrected)
		cfg.EndDay = corrected
		cfg.Preset = models.PresetCustom
	}

	if !cfg.Preset.Valid() {
		cfg.Preset = models.PresetCustom
	}
	if start, end, ok := models.PresetDays(cfg.Preset); ok {
		if cfg.StartDay != start || cfg.EndDay != end {
			cfg.Preset = models.PresetCustom
		}
	}

	return cfg, nil
}
