package constants

import "time"

const (
	AppName            = "tweeklike"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/tweeklike/tweeklike.db"
	DefaultConfigFile  = "~/.config/tweeklike/config.json"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// StorageKey is the well-known key the whole task collection is stored under
	StorageKey = "tweeklike-tasks"

	// Recurrence constants
	DefaultHorizonDays   = 28
	MonthlyLookahead     = 3
	DefaultRemoteTimeout = 10 * time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tweeklike-"
	BackupFileSuffix = ".yaml"

	// Environment variables
	EnvDBConnection = "TWEEKLIKE_DB_CONNECTION"
)
