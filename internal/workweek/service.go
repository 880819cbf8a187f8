package workweek

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/julianstephens/weeklog/internal/cache"
	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/logger"
	"github.com/julianstephens/weeklog/internal/models"
	"github.com/julianstephens/weeklog/internal/storage"
	"github.com/julianstephens/weeklog/internal/utils"
)

// Service resolves work-week configs from the settings store, caches them per
// scope, and exposes the week-ending calculation. The scope parameter is a
// forward-compatibility hook; a single process uses constants.DefaultScope.
type Service struct {
	store storage.Provider
	cache cache.ConfigCache
}

// NewService creates a work-week service backed by the given store and cache.
func NewService(store storage.Provider, c cache.ConfigCache) *Service {
	return &Service{
		store: store,
		cache: c,
	}
}

// Config returns the work-week config for a scope. Cache hits never touch the
// store. On a miss it reads the four settings keys, applying the per-field
// default for any missing key, validates the result, and caches it. Any store
// or parse failure degrades to the default config with a warning; resolution
// failures never propagate.
func (s *Service) Config(ctx context.Context, scope string) models.WorkWeekConfig {
	if cfg, ok := s.cache.Get(scope); ok {
		return cfg
	}

	cfg, err := s.loadConfig(ctx)
	if err != nil {
		logger.Warn("Failed to resolve work week config, using default", "scope", scope, "error", err)
		return models.DefaultWorkWeekConfig()
	}

	s.cache.Set(scope, cfg)
	return cfg
}

// loadConfig reads the four settings rows, merges defaults for absent keys,
// and validates. Corrections made here are applied to the returned value but
// are not written back; only UpdateConfig and RepairSettings persist.
func (s *Service) loadConfig(ctx context.Context) (models.WorkWeekConfig, error) {
	data := make(map[string]string)
	for _, key := range []string{
		constants.SettingWorkWeekPreset,
		constants.SettingWorkWeekStartDay,
		constants.SettingWorkWeekEndDay,
		constants.SettingWorkWeekTimezone,
	} {
		value, err := s.store.GetSetting(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrSettingNotFound) {
				continue
			}
			return models.WorkWeekConfig{}, err
		}
		data[key] = value
	}

	cfg, err := models.ConfigFromMap(data)
	if err != nil {
		return models.WorkWeekConfig{}, err
	}
	return ValidateConfig(cfg)
}

// UpdateConfig validates a config, persists it as four individually-upserted
// settings rows, refreshes the cache for the scope, and returns the corrected
// config. A ValidationError from out-of-range day values is the only failure
// mode that propagates to callers.
func (s *Service) UpdateConfig(ctx context.Context, cfg models.WorkWeekConfig, scope string) (models.WorkWeekConfig, error) {
	corrected, err := ValidateConfig(cfg)
	if err != nil {
		return models.WorkWeekConfig{}, err
	}

	for key, value := range models.ConfigToSettings(corrected) {
		if err := s.store.SetSetting(ctx, key, value); err != nil {
			return models.WorkWeekConfig{}, err
		}
	}

	s.cache.Invalidate(scope)
	s.cache.Set(scope, corrected)
	return corrected, nil
}

// WeekEnding returns the week-ending bucket date for an entry date. It never
// fails: a calculation error (a custom schedule with an unassignable
// non-workday, a bad timezone) falls back to the simple Friday bucket.
func (s *Service) WeekEnding(ctx context.Context, date time.Time, scope string) time.Time {
	cfg := s.Config(ctx, scope)
	end, err := Calculate(date, cfg)
	if err != nil {
		logger.Warn("Week ending calculation failed, using simple Friday fallback",
			"date", date.Format(constants.DateFormat), "error", err)
		return SimpleFridayWeekEnding(date)
	}
	return end
}

// Repair records one settings row rewritten by RepairSettings.
type Repair struct {
	Key      string
	OldValue string
	NewValue string
	Reason   string
}

// AuditSettings checks each stored work-week key against its expected domain
// and reports the repairs that RepairSettings would make, without writing.
// Settings live as independent rows, so one can be corrupted out-of-band
// while the rest of the config stays valid.
func (s *Service) AuditSettings(ctx context.Context) ([]Repair, error) {
	var repairs []Repair

	check := func(key, fallback string, valid func(string) bool) error {
		value, err := s.store.GetSetting(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrSettingNotFound) {
				repairs = append(repairs, Repair{Key: key, NewValue: fallback, Reason: "missing"})
				return nil
			}
			return err
		}
		if !valid(value) {
			repairs = append(repairs, Repair{Key: key, OldValue: value, NewValue: fallback, Reason: "invalid value"})
		}
		return nil
	}

	def := models.DefaultWorkWeekConfig()

	if err := check(constants.SettingWorkWeekPreset, string(def.Preset), func(v string) bool {
		return models.WorkWeekPreset(v).Valid()
	}); err != nil {
		return nil, err
	}
	if err := check(constants.SettingWorkWeekStartDay, strconv.Itoa(def.StartDay), validDay); err != nil {
		return nil, err
	}
	if err := check(constants.SettingWorkWeekEndDay, strconv.Itoa(def.EndDay), validDay); err != nil {
		return nil, err
	}
	if err := check(constants.SettingWorkWeekTimezone, constants.DefaultTimezone, func(v string) bool {
		return v != "" && utils.ValidateTimezone(v)
	}); err != nil {
		return nil, err
	}

	return repairs, nil
}

// RepairSettings rewrites every invalid or missing work-week settings row to
// its default and invalidates the cache. It returns the repairs made.
func (s *Service) RepairSettings(ctx context.Context) ([]Repair, error) {
	repairs, err := s.AuditSettings(ctx)
	if err != nil {
		return nil, err
	}

	for _, r := range repairs {
		if err := s.store.SetSetting(ctx, r.Key, r.NewValue); err != nil {
			return repairs, err
		}
		logger.Warn("Repaired work week setting", "key", r.Key, "old", r.OldValue, "new", r.NewValue, "reason", r.Reason)
	}

	if len(repairs) > 0 {
		s.cache.Invalidate(constants.DefaultScope)
	}
	return repairs, nil
}

func validDay(v string) bool {
	n, err := strconv.Atoi(v)
	return err == nil && n >= 1 && n <= 7
}
