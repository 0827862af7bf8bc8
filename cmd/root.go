package cmd

import (
	"fmt"
	"os"

	"github.com/meysamhadeli/livefile/config"
	"github.com/meysamhadeli/livefile/constants/lipgloss"
	"github.com/meysamhadeli/livefile/live_file"
	"github.com/meysamhadeli/livefile/logging"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X .../cmd.Version=..."
var Version = "dev"

// RootDependencies holds everything a subcommand needs
type RootDependencies struct {
	Cwd     string
	Config  *config.Config
	Logger  *logging.Logger
	Manager *live_file.Manager
}

// Close stops the manager and flushes the log file.
func (d *RootDependencies) Close() {
	d.Manager.Stop()
	_ = d.Logger.Close()
}

var rootCmd = &cobra.Command{
	Use:   "livefile",
	Short: "Keep files in memory and reload them when they change on disk.",
	Long: `livefile caches file contents in memory, shares one copy between every reader of a path,
and reloads a file in the background when its modification time or size changes.
Use 'watch' to follow files, 'cat' to print a file through the cache and 'stats' to inspect it.`,
	Run: func(cmd *cobra.Command, args []string) {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("livefile version %s", Version)))
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd)
}

// handleRootCommand loads configuration and builds the logger and manager.
// The manager is not started; commands that need background reloads start it themselves.
func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigs(cmd.Root(), cwd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	manager := live_file.NewManager(live_file.ManagerConfig{
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	return &RootDependencies{
		Cwd:     cwd,
		Config:  cfg,
		Logger:  logger,
		Manager: manager,
	}, nil
}
