package workweek

import (
	"errors"
	"testing"

	"github.com/julianstephens/weeklog/internal/models"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.WorkWeekConfig
		want models.WorkWeekConfig
	}{
		{
			name: "canonical monday_friday passes through",
			cfg:  models.WorkWeekConfig{Preset: models.PresetMondayFriday, StartDay: 1, EndDay: 5},
			want: models.WorkWeekConfig{Preset: models.PresetMondayFriday, StartDay: 1, EndDay: 5},
		},
		{
			name: "canonical sunday_thursday passes through",
			cfg:  models.WorkWeekConfig{Preset: models.PresetSundayThursday, StartDay: 7, EndDay: 4},
			want: models.WorkWeekConfig{Preset: models.PresetSundayThursday, StartDay: 7, EndDay: 4},
		},
		{
			name: "identical days advance the end day and force custom",
			cfg:  models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 3, EndDay: 3},
			want: models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 3, EndDay: 4},
		},
		{
			name: "identical sunday days wrap the corrected end to monday",
			cfg:  models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 7, EndDay: 7},
			want: models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 7, EndDay: 1},
		},
		{
			name: "named preset with non-canonical days is reclassified custom",
			cfg:  models.WorkWeekConfig{Preset: models.PresetMondayFriday, StartDay: 2, EndDay: 5},
			want: models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 2, EndDay: 5},
		},
		{
			name: "unknown preset tag becomes custom",
			cfg:  models.WorkWeekConfig{Preset: "four_day_week", StartDay: 1, EndDay: 4},
			want: models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 1, EndDay: 4},
		},
		{
			name: "timezone is preserved",
			cfg:  models.WorkWeekConfig{Preset: models.PresetMondayFriday, StartDay: 1, EndDay: 5, Timezone: "America/New_York"},
			want: models.WorkWeekConfig{Preset: models.PresetMondayFriday, StartDay: 1, EndDay: 5, Timezone: "America/New_York"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateConfig(tt.cfg)
			if err != nil {
				t.Fatalf("ValidateConfig() returned unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ValidateConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateConfigRejectsOutOfRangeDays(t *testing.T) {
	tests := []struct {
		name      string
		cfg       models.WorkWeekConfig
		wantField string
	}{
		{"start day zero", models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 0, EndDay: 5}, "start_day"},
		{"start day eight", models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 8, EndDay: 5}, "start_day"},
		{"end day zero", models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 1, EndDay: 0}, "end_day"},
		{"end day negative", models.WorkWeekConfig{Preset: models.PresetCustom, StartDay: 1, EndDay: -2}, "end_day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateConfig(tt.cfg)
			if err == nil {
				t.Fatal("ValidateConfig() succeeded, want ValidationError")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateConfig() error = %v, want *ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}
