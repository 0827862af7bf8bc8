package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meysamhadeli/livefile/config"
	"github.com/meysamhadeli/livefile/constants/lipgloss"
	"github.com/meysamhadeli/livefile/live_file"
	"github.com/meysamhadeli/livefile/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// watchCmd: livefile watch
var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Follow files and report every reload.",
	Long: `The 'watch' command loads the given files (directories are expanded once at startup, new files
are not picked up), starts the background poller and prints a line whenever a file is reloaded.
The configuration file in use is followed as well: a change to it re-applies the poll interval,
the check interval and the highlighting settings without restarting. Press Ctrl+C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		printContents, _ := cmd.Flags().GetBool("print")

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		defer rootDependencies.Close()

		if len(args) == 0 {
			args = []string{rootDependencies.Cwd}
		}
		return handleWatchCommand(rootDependencies, args, printContents)
	},
}

func init() {
	watchCmd.Flags().BoolP("print", "p", false, "Print the new contents of a file after it is reloaded")

	rootCmd.AddCommand(watchCmd)
}

// watchSettings are the parts of the configuration that can change while watching
type watchSettings struct {
	checkInterval time.Duration
	theme         string
	highlight     bool
}

func handleWatchCommand(rootDependencies *RootDependencies, paths []string, printContents bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	manager := rootDependencies.Manager
	settings := watchSettings{
		checkInterval: rootDependencies.Config.CheckInterval,
		theme:         rootDependencies.Config.Theme,
		highlight:     rootDependencies.Config.Highlight,
	}

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").WithDelay(100).WithRemoveWhenDone(true)
	spinnerLoad, _ := spinner.Start("Loading files...")

	files, err := utils.ExpandPaths(afero.NewOsFs(), paths)
	if err != nil {
		_ = spinnerLoad.Stop()
		return err
	}

	handles, failed := openAll(manager, files)
	defer closeAll(handles)

	var configFile *live_file.LiveFile
	if configPath := config.ConfigFilePath(rootDependencies.Cwd); configPath != "" {
		configFile, err = manager.Open(configPath)
		if err != nil {
			failed[configPath] = err
		} else {
			defer configFile.Close()
		}
	}

	_ = spinnerLoad.Stop()
	fmt.Print("\r")

	for path, err := range failed {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Skipped %s: %v", path, err)))
	}
	if len(handles) == 0 {
		return fmt.Errorf("nothing to watch")
	}

	if err := manager.Start(); err != nil {
		return err
	}

	go utils.GracefulShutdown(ctx, cancel, manager.Stop)

	fmt.Println(lipgloss.BoxStyle.Render(fmt.Sprintf("Watching %d file(s), polling every %s. Ctrl+C to stop.", len(handles), manager.Poller().Interval())))

	ticker := time.NewTicker(settings.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if configFile != nil && configFile.WasReloaded() {
			if next, ok := applyConfigReload(configFile, manager, settings); ok {
				if next.checkInterval != settings.checkInterval {
					ticker.Reset(next.checkInterval)
				}
				settings = next
			}
		}

		for _, handle := range handles {
			if !handle.WasReloaded() {
				continue
			}
			if err := reportReload(handle, settings, printContents); err != nil {
				fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			}
		}
	}
}

// reportReload prints one line for a reloaded file and optionally its contents.
func reportReload(handle *live_file.LiveFile, settings watchSettings, printContents bool) error {
	contents, generation, hash, err := handle.ContentsWithHash()
	if err != nil {
		return err
	}

	line := fmt.Sprintf("↻ %s  generation=%d  size=%d  xxh3=%s  at %s",
		handle.Path(), generation, len(contents), hash, time.Now().Format("15:04:05"))
	fmt.Println(lipgloss.Green.Render(line))

	if !printContents {
		return nil
	}
	if err := utils.RenderContent(os.Stdout, handle.Path(), contents, settings.theme, settings.highlight); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

// applyConfigReload re-parses the configuration file and pushes the new values into the
// running manager. An invalid file is reported and the previous settings stay in effect.
func applyConfigReload(configFile *live_file.LiveFile, manager *live_file.Manager, current watchSettings) (watchSettings, bool) {
	contents, err := configFile.Contents()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return current, false
	}

	cfg, err := config.ReloadConfigFromBytes(contents, config.GetConfigFileType(configFile.Path()))
	if err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Ignoring configuration change: %v", err)))
		return current, false
	}

	manager.Poller().SetInterval(cfg.PollInterval)
	fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("Configuration reloaded: poll_interval=%s check_interval=%s theme=%s",
		cfg.PollInterval, cfg.CheckInterval, cfg.Theme)))

	return watchSettings{
		checkInterval: cfg.CheckInterval,
		theme:         cfg.Theme,
		highlight:     cfg.Highlight,
	}, true
}
