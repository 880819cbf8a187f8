package cli

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/julianstephens/weeklog/internal/backup"
	"github.com/julianstephens/weeklog/internal/constants"
	"github.com/julianstephens/weeklog/internal/journal"
	"github.com/julianstephens/weeklog/internal/logger"
	"github.com/julianstephens/weeklog/internal/storage"
	"github.com/julianstephens/weeklog/internal/workweek"
)

type Context struct {
	Store    storage.Provider
	WorkWeek *workweek.Service
	Journal  *journal.Synchronizer
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	_, err := mgr.CreateBackup()
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseDate turns a --date argument into a calendar date. It accepts the
// standard YYYY-MM-DD format, an empty string meaning today, and natural
// language like "yesterday" or "last friday".
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}

	if t, err := time.ParseInLocation(constants.DateFormat, s, time.Local); err == nil {
		return t, nil
	}

	result, err := dateParser.Parse(s, time.Now())
	if err == nil && result != nil {
		t := result.Time
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q (try YYYY-MM-DD or e.g. \"yesterday\")", s)
}
