package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/meysamhadeli/livefile/constants/lipgloss"
	"github.com/meysamhadeli/livefile/live_file"
	"github.com/meysamhadeli/livefile/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats [paths...]",
	Short: "Load files into the store and show what it holds.",
	Long: `The 'stats' command loads the given files (directories are expanded once with the default
ignore rules) and prints one row per cached file: id, size, generation, reference count and
content hash, followed by the store counters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scan, _ := cmd.Flags().GetBool("scan")

		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		defer rootDependencies.Close()

		if len(args) == 0 {
			args = []string{rootDependencies.Cwd}
		}
		return handleStatsCommand(rootDependencies, args, scan)
	},
}

func init() {
	statsCmd.Flags().BoolP("scan", "s", false, "Run one reload scan before printing")

	rootCmd.AddCommand(statsCmd)
}

func handleStatsCommand(rootDependencies *RootDependencies, paths []string, scan bool) error {
	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgCyan)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)

	spinnerInstance, _ := spinner.Start("Loading files...")

	files, err := utils.ExpandPaths(afero.NewOsFs(), paths)
	if err != nil {
		_ = spinnerInstance.Stop()
		return err
	}

	handles, failed := openAll(rootDependencies.Manager, files)
	defer closeAll(handles)

	store := rootDependencies.Manager.Store()
	if scan {
		store.ScanAndReload()
	}

	_ = spinnerInstance.Stop()
	fmt.Print("\r")

	for path, err := range failed {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Skipped %s: %v", path, err)))
	}

	data := pterm.TableData{{"ID", "Path", "Size", "Generation", "Refs", "Hash", "Modified"}}
	for _, snapshot := range store.Snapshots() {
		data = append(data, []string{
			snapshot.ID.String(),
			snapshot.Path,
			strconv.Itoa(snapshot.Size),
			strconv.FormatUint(snapshot.Generation, 10),
			strconv.Itoa(snapshot.RefCount),
			snapshot.Hash,
			snapshot.ModTime.Format("2006-01-02 15:04:05"),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Println(lipgloss.Info.Render("Store Statistics:"))
	stats := store.GetPerformanceStats()
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		switch value := stats[key].(type) {
		case float64:
			fmt.Printf("  %s: %.1f\n", key, value)
		default:
			fmt.Printf("  %s: %v\n", key, value)
		}
	}

	return nil
}

// openAll opens a handle per file and reports the files that could not be loaded.
func openAll(manager *live_file.Manager, files []string) ([]*live_file.LiveFile, map[string]error) {
	handles := make([]*live_file.LiveFile, 0, len(files))
	failed := make(map[string]error)
	for _, path := range files {
		handle, err := manager.Open(path)
		if err != nil {
			failed[path] = err
			continue
		}
		handles = append(handles, handle)
	}
	return handles, failed
}

func closeAll(handles []*live_file.LiveFile) {
	for _, handle := range handles {
		_ = handle.Close()
	}
}
