package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dirsort/internal/config"
	"github.com/ppiankov/dirsort/internal/history"
)

// Version, Commit and BuildDate are set via LDFLAGS at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	verbose    bool
	configFile string
	historyDB  string
)

func NewRootCmd() *cobra.Command {
	var flags organizeFlags

	root := &cobra.Command{
		Use:   "dirsort --path <dir>",
		Short: "Sort files into folders named after their extension",
		Long: `dirsort moves every file under a directory into a subfolder named after its
lowercase extension, e.g. photos/IMG_01.JPG -> photos/jpg/IMG_01.JPG.

Files without an extension stay where they are. Re-running on an organized
directory moves nothing. Use --dry-run to preview the moves.`,
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			if err := flags.applySettings(cmd, cfg); err != nil {
				return err
			}
			return organizeOnce(cmd, flags, cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "path to config file")
	root.PersistentFlags().StringVar(&historyDB, "history-db", "", "path to the run history database (default: user cache dir)")

	flags.bind(root)
	_ = root.MarkFlagRequired("path")

	root.AddCommand(newWatchCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func loadSettings() (*config.Settings, error) {
	cfg, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// historyPath resolves the database location: flag, then config, then default.
func historyPath(cfg *config.Settings) string {
	if historyDB != "" {
		return historyDB
	}
	if cfg.HistoryDB != "" {
		return cfg.HistoryDB
	}
	return history.DefaultPath()
}
