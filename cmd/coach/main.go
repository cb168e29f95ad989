package main

import (
	"context"
	"fmt"
	"os"

	"chart-coach-be/internal/bootstrap"
	"chart-coach-be/internal/config"
	"chart-coach-be/internal/model"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

const (
	storeMemory = "memory"
	storeSqlite = "sqlite"
)

// globalFlags are shared by every subcommand that opens the engine.
type globalFlags struct {
	store   string
	dbPath  string
	logPath string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "coach",
		Short:         "Chart coach in the terminal",
		Long:          "Chat with the chart coach: send text, chart screenshots or example scenarios and get a TL;DR or full read.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.store, "store", storeSqlite, "session store: sqlite or memory")
	cmd.PersistentFlags().StringVar(&flags.dbPath, "db", "coach.db", "sqlite database file")
	cmd.PersistentFlags().StringVar(&flags.logPath, "log", "logs/coach.log", "log file")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newChatCmd(flags))
	cmd.AddCommand(newSessionsCmd(flags))
	cmd.AddCommand(newScenariosCmd(flags))
	cmd.AddCommand(newWatchCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "coach %s (commit: %s)\n", Version, Commit)
		},
	}
}

// openCore builds the engine from env config with the store overridden by flags.
// Logs go to the file only so they never interleave with the transcript.
func openCore(ctx context.Context, flags *globalFlags) (*bootstrap.Core, error) {
	cfg := config.Load()
	log := logger.NewIsolatedLogger(flags.logPath)

	var db *gorm.DB
	switch flags.store {
	case storeMemory:
		cfg.Store.Backend = config.StoreBackendMemory
	case storeSqlite:
		cfg.Store.Backend = config.StoreBackendGorm
		gdb, err := database.NewQuietGormDB(database.DriverSqlite, flags.dbPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", flags.dbPath, err)
		}
		if err := model.AutoMigrate(gdb); err != nil {
			return nil, fmt.Errorf("migrate %s: %w", flags.dbPath, err)
		}
		db = gdb
	default:
		return nil, fmt.Errorf("unknown store %q (want sqlite or memory)", flags.store)
	}

	return bootstrap.NewCore(ctx, cfg, db, log)
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
