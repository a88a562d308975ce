package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/rnclean/internal/cleaning"
	"github.com/hay-kot/rnclean/internal/commands"
	"github.com/hay-kot/rnclean/internal/core/config"
	"github.com/hay-kot/rnclean/internal/core/eventbus"
	"github.com/hay-kot/rnclean/internal/core/logging"
	"github.com/hay-kot/rnclean/internal/core/styles"
	"github.com/hay-kot/rnclean/internal/data/db"
	"github.com/hay-kot/rnclean/internal/data/stores"
	"github.com/hay-kot/rnclean/internal/executor"
	"github.com/hay-kot/rnclean/internal/printer"
	"github.com/hay-kot/rnclean/internal/probes"
	"github.com/hay-kot/rnclean/internal/profiler"
	"github.com/hay-kot/rnclean/internal/rnclean"
	"github.com/hay-kot/rnclean/pkg/executil"
	"github.com/hay-kot/rnclean/pkg/logutils"
	"github.com/hay-kot/rnclean/pkg/utils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

const busBuffer = 512

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	var (
		logCloser  func()
		rncleanApp = &rnclean.App{}
		database   *db.DB
		busCancel  context.CancelFunc
		busDone    chan struct{}
		notes      = &utils.DeferredWriter{}
		prof       *profiler.Server
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "rnclean",
		Usage:     "Reclaim disk space from React-Native and mobile dev caches",
		UsageText: "rnclean [global options] command [command options]",
		Description: `rnclean scans a fixed catalog of cache and build artifact locations (Metro,
Expo, npm, Xcode, Gradle, CocoaPods, Docker and more), reports how much space
can be reclaimed, and deletes what you approve.

Run 'rnclean scan' to see what can be reclaimed.
Run 'rnclean clean' to scan and delete it.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("RNCLEAN_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/rnclean.log)",
				Sources:     cli.EnvVars("RNCLEAN_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("RNCLEAN_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("RNCLEAN_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.IntFlag{
				Name:        "profiler-port",
				Usage:       "enable pprof HTTP endpoint on 127.0.0.1 at the given port (e.g., 6060)",
				Sources:     cli.EnvVars("RNCLEAN_PROFILER_PORT"),
				Destination: &flags.ProfilerPort,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/rnclean.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "rnclean.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			ctx = printer.NewContext(ctx, printer.New(os.Stderr))

			if flags.ProfilerPort > 0 {
				prof = profiler.New(flags.ProfilerPort, logging.Component("profiler"))
				if err := prof.Start(ctx); err != nil {
					return ctx, err
				}
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			// Open database connection
			dbOpts := db.OpenOptions{
				MaxOpenConns: cfg.Database.MaxOpenConns,
				MaxIdleConns: cfg.Database.MaxIdleConns,
				BusyTimeout:  cfg.Database.BusyTimeout,
			}
			database, err = db.Open(cfg.DataDir, dbOpts)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			// Create stores
			historyStore := stores.NewHistoryStore(database, cfg.History.ExportLimit)
			settingsStore := stores.NewSettingsStore(database)

			prefs, err := rnclean.LoadPreferences(ctx, settingsStore)
			if err != nil {
				printer.Ctx(ctx).Warnf("%v; using defaults for those settings", err)
			}

			styles.SetTheme(styles.ThemeFor(prefs.DarkMode))

			// Start the event bus
			bus := eventbus.New(busBuffer)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			if prefs.Notifications {
				eventbus.NewNotificationRouter(bus).Register()

				// Printed after the command so they never interleave with its output.
				notePrinter := printer.New(notes)
				bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
					switch p.Level {
					case eventbus.LevelError:
						notePrinter.Errorf("%s", p.Message)
					case eventbus.LevelWarning:
						notePrinter.Warnf("%s", p.Message)
					default:
						notePrinter.Infof("%s", p.Message)
					}
				})
			}

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			busDone = make(chan struct{})
			go func() {
				defer close(busDone)
				bus.Start(busCtx)
			}()

			var (
				exec     = &executil.RealExecutor{}
				probeLog = logging.Component("probes")
				execLog  = logging.Component("executor")
			)

			catalog, err := probes.DefaultCatalog(rnclean.CatalogOptions(cfg, prefs, exec, probeLog))
			if err != nil {
				return ctx, fmt.Errorf("build catalog: %w", err)
			}

			deleter := &executor.Router{
				Files:  &executor.FileDeleter{Logger: execLog},
				Docker: &executor.DockerDeleter{Binary: cfg.Docker.Binary, Exec: exec, Logger: execLog},
			}

			orch := cleaning.New(catalog, deleter, historyStore,
				cleaning.WithBus(bus),
				cleaning.WithLogger(logging.Component("cleaning")),
				cleaning.WithDeepThreshold(cfg.Cleaning.DeepThreshold),
				cleaning.WithRecentLimit(cfg.Cleaning.RecentLimit),
			)
			if err := orch.Reload(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to load history")
			}

			home, _ := os.UserHomeDir()
			doctorSvc := rnclean.NewDoctorService(cfg, database, exec, home)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*rncleanApp = *rnclean.NewApp(orch, catalog, settingsStore, prefs, doctorSvc, bus, cfg, database)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Drain and stop the event bus
			if busCancel != nil {
				busCancel()
				<-busDone
			}

			// The progress view already showed notifications on a terminal
			if commands.Interactive() {
				notes.Discard()
			} else {
				_ = notes.Flush(os.Stderr)
			}

			if prof != nil {
				if err := prof.Stop(); err != nil {
					log.Warn().Err(err).Msg("failed to stop profiler")
				}
			}

			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewScanCmd(flags, rncleanApp).Register(app)
	app = commands.NewCleanCmd(flags, rncleanApp).Register(app)
	app = commands.NewTasksCmd(flags, rncleanApp).Register(app)
	app = commands.NewHistoryCmd(flags, rncleanApp).Register(app)
	app = commands.NewStatsCmd(flags, rncleanApp).Register(app)
	app = commands.NewSettingsCmd(flags, rncleanApp).Register(app)
	app = commands.NewDoctorCmd(flags, rncleanApp).Register(app)
	app = commands.NewConfigValidateCmd(flags, rncleanApp).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	stop()
	os.Exit(exitCode)
}
