package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bnema/compatctl/internal/config"
	"github.com/bnema/compatctl/internal/logger"
)

// Version info set via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
)

var (
	verbose     bool
	configPath  string
	profileFlag string

	appLogger *log.Logger
	closeLog  = func() {}
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "compatctl",
	Short:   "Add-on compatibility checker for your mail client profile",
	Version: version + " (" + commit + ")",
	Long: `compatctl keeps a cached picture of which installed add-ons work on the
release, next-ESR and current-ESR channels of the host, using the public
compatibility report.

Quick start:
  compatctl check     Fetch the report and print the badge
  compatctl report    Show the ranked per-add-on table
  compatctl watch     Keep the badge up to date as add-ons change`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appLogger, closeLog = logger.New(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if profileFlag != "" {
			loaded.ProfileDir = profileFlag
		}
		cfg = loaded
		appLogger.Debug("Config loaded", "profile", cfg.ProfileDir, "cache", cfg.CacheDir)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		closeLog()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/compatctl/config.toml)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Profile directory (default: the host's default profile)")
}
