package main

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tweeklike/internal/cli"
	"github.com/julianstephens/tweeklike/internal/cli/backups"
	"github.com/julianstephens/tweeklike/internal/cli/system"
	"github.com/julianstephens/tweeklike/internal/cli/tasks"
	"github.com/julianstephens/tweeklike/internal/cli/views"
	"github.com/julianstephens/tweeklike/internal/constants"
	"github.com/julianstephens/tweeklike/internal/errors"
	"github.com/julianstephens/tweeklike/internal/logger"
	"github.com/julianstephens/tweeklike/internal/storage"
	"github.com/julianstephens/tweeklike/internal/utils"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string        `help:"Data file (.db or .json) or PostgreSQL connection string. PostgreSQL passwords must come from the keyring, the environment or .pgpass." default:"${config_path}" env:"TWEEKLIKE_CONFIG"`
	Remote   string        `help:"Base URL of a tweeklike API server to use instead of local storage." env:"TWEEKLIKE_REMOTE"`
	Timeout  time.Duration `help:"Timeout for each remote call." default:"${remote_timeout}"`
	Timezone string        `help:"IANA timezone that decides what today is." default:"Local" env:"TWEEKLIKE_TIMEZONE"`
	Horizon  int           `help:"Days ahead to generate recurring occurrences." default:"${horizon}"`
	Debug    bool          `help:"Log debug output to stderr."`

	Init     system.InitCmd    `cmd:"" help:"Initialize tweeklike storage."`
	Week     views.WeekCmd     `cmd:"" help:"Show a week of tasks." default:"withargs"`
	Day      views.DayCmd      `cmd:"" help:"Show one day."`
	Someday  views.SomedayCmd  `cmd:"" help:"Show undated tasks."`
	List     views.ListCmd     `cmd:"" help:"List tasks in a date range."`
	Add      tasks.AddCmd      `cmd:"" help:"Add a task."`
	Label    tasks.LabelCmd    `cmd:"" help:"Pin a label to a day."`
	Edit     tasks.EditCmd     `cmd:"" help:"Edit a task."`
	Done     tasks.DoneCmd     `cmd:"" help:"Toggle a task's completion."`
	Color    tasks.ColorCmd    `cmd:"" help:"Set a task's color."`
	Delete   tasks.DeleteCmd   `cmd:"" help:"Delete a task."`
	Move     tasks.MoveCmd     `cmd:"" help:"Move a task to another day, category or position."`
	Rollover tasks.RolloverCmd `cmd:"" help:"Move overdue tasks to today."`
	Repeat   tasks.RepeatCmd   `cmd:"" help:"Set or clear a task's recurrence."`
	Subtask  tasks.SubtaskCmd  `cmd:"" help:"Manage subtasks."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Apply pending database schema migrations."`
	Serve    system.ServeCmd    `cmd:"" help:"Serve the task store over HTTP."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check stored tasks for conflicts."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Weekly planner with recurring tasks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, constants.DefaultConfigFile),
		kong.Vars{
			"version":        constants.Version,
			"config_path":    constants.DefaultConfigPath,
			"remote_timeout": constants.DefaultRemoteTimeout.String(),
			"horizon":        strconv.Itoa(constants.DefaultHorizonDays),
		},
	)

	command := ctx.Command()
	config := cli.ExpandHome(CLI.Config)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: logDir(config),
		Stderr:    command == "serve",
	}); err != nil {
		errors.Fatal(err)
	}

	loc, err := utils.LoadLocation(CLI.Timezone)
	if err != nil {
		errors.Fatal(err)
	}

	store, err := cli.NewProvider(config)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:    store,
		Location: loc,
		Horizon:  CLI.Horizon,
	}

	background := context.Background()
	switch {
	case needsNothing(command):
	case CLI.Remote != "" && !strings.HasPrefix(command, "serve"):
		if err := appCtx.Connect(background, CLI.Remote, CLI.Timeout); err != nil {
			errors.Fatal(err)
		}
	default:
		if err := appCtx.Open(); err != nil {
			errors.Fatal(err)
		}
	}

	runErr := ctx.Run(appCtx)
	closeErr := appCtx.Close(background)
	errors.Fatal(runErr)
	errors.Fatal(closeErr)
}

// needsNothing reports commands that open storage themselves or not at all.
func needsNothing(command string) bool {
	switch strings.Fields(command)[0] {
	case "init", "doctor", "keyring", "migrate":
		return true
	}
	return false
}

// logDir keeps logs beside file storage, or in the default config directory.
func logDir(config string) string {
	if storage.IsPostgres(config) {
		return filepath.Dir(cli.ExpandHome(constants.DefaultConfigPath))
	}
	return filepath.Dir(config)
}
