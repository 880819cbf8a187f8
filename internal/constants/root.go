package constants

const (
	AppName            = "weeklog"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/weeklog/weeklog.db"
	Version            = "v0.3.0"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "weeklog-"
	BackupFileSuffix = ".db"

	// JournalDirName is the directory under the config dir holding entry files
	JournalDirName = "journal"

	// WeekBucketPrefix prefixes week bucket directories (week_ending_2025-01-10)
	WeekBucketPrefix = "week_ending_"

	// EntryFileExt is the file extension for journal entry files
	EntryFileExt = ".md"
)
