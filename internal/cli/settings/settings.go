package settings

import (
	"context"
	"fmt"

	"github.com/julianstephens/weeklog/internal/cli"
	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/models"
	"github.com/julianstephens/weeklog/internal/utils"
)

// SettingsCmd groups the work-week configuration commands.
type SettingsCmd struct {
	Show   ShowCmd   `cmd:"" help:"Show the current work week configuration." default:"1"`
	Set    SetCmd    `cmd:"" help:"Update the work week configuration."`
	Repair RepairCmd `cmd:"" help:"Validate stored settings rows and rewrite invalid ones to defaults."`
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	cfg := ctx.WorkWeek.Config(context.Background(), constants.DefaultScope)

	fmt.Println("Work Week Configuration:")
	fmt.Printf("  Preset:     %s\n", cfg.Preset)
	fmt.Printf("  Start Day:  %d (%s)\n", cfg.StartDay, dayName(cfg.StartDay))
	fmt.Printf("  End Day:    %d (%s)\n", cfg.EndDay, dayName(cfg.EndDay))
	if cfg.Timezone == "" {
		fmt.Printf("  Timezone:   (system local)\n")
	} else {
		fmt.Printf("  Timezone:   %s\n", cfg.Timezone)
	}
	return nil
}

type SetCmd struct {
	Preset   string  `help:"Named preset: monday_friday or sunday_thursday."`
	StartDay *int    `help:"Work week start day (1=Monday ... 7=Sunday)."`
	EndDay   *int    `help:"Work week end day (1=Monday ... 7=Sunday)."`
	Timezone *string `help:"IANA timezone name, or \"Local\" for the system timezone."`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	cfg := ctx.WorkWeek.Config(bg, constants.DefaultScope)

	updated := false
	if c.Preset != "" {
		preset := models.WorkWeekPreset(c.Preset)
		start, end, ok := models.PresetDays(preset)
		if !ok {
			return fmt.Errorf("unknown preset %q (expected %s or %s)",
				c.Preset, models.PresetMondayFriday, models.PresetSundayThursday)
		}
		cfg.Preset = preset
		cfg.StartDay = start
		cfg.EndDay = end
		updated = true
	}
	if c.StartDay != nil {
		cfg.StartDay = *c.StartDay
		cfg.Preset = models.PresetCustom
		updated = true
	}
	if c.EndDay != nil {
		cfg.EndDay = *c.EndDay
		cfg.Preset = models.PresetCustom
		updated = true
	}
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone %q", *c.Timezone)
		}
		cfg.Timezone = *c.Timezone
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use 'weeklog settings show' to view the configuration.")
		return nil
	}

	corrected, err := ctx.WorkWeek.UpdateConfig(bg, cfg, constants.DefaultScope)
	if err != nil {
		return fmt.Errorf("failed to update work week config: %w", err)
	}

	fmt.Printf("✓ Work week updated: %s (%s through %s)\n",
		corrected.Preset, dayName(corrected.StartDay), dayName(corrected.EndDay))
	if corrected.StartDay != cfg.StartDay || corrected.EndDay != cfg.EndDay || corrected.Preset != cfg.Preset {
		fmt.Println("  (values were auto-corrected during validation)")
	}
	fmt.Println("  Existing index records keep their old buckets until 'weeklog reindex' runs.")
	return nil
}

type RepairCmd struct{}

func (c *RepairCmd) Run(ctx *cli.Context) error {
	repairs, err := ctx.WorkWeek.RepairSettings(context.Background())
	if err != nil {
		return fmt.Errorf("settings repair failed: %w", err)
	}

	if len(repairs) == 0 {
		fmt.Println("✓ All work week settings are valid.")
		return nil
	}

	fmt.Printf("Repaired %d setting(s):\n", len(repairs))
	for _, r := range repairs {
		if r.OldValue == "" {
			fmt.Printf("  %s: %s -> %q\n", r.Key, r.Reason, r.NewValue)
		} else {
			fmt.Printf("  %s: %s, %q -> %q\n", r.Key, r.Reason, r.OldValue, r.NewValue)
		}
	}
	return nil
}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func dayName(day int) string {
	if day < 1 || day > 7 {
		return "?"
	}
	return dayNames[day-1]
}
