package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/meysamhadeli/livefile/constants/lipgloss"
	"github.com/meysamhadeli/livefile/live_file"
	"github.com/meysamhadeli/livefile/utils"
	"github.com/spf13/cobra"
)

// catCmd: livefile cat
var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a file through the in-memory cache.",
	Long: `The 'cat' command loads a file into the store exactly as 'watch' would and prints it,
highlighted with the configured theme unless highlighting is disabled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rootDependencies, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		defer rootDependencies.Close()

		return handleCatCommand(rootDependencies, args[0])
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}

func handleCatCommand(rootDependencies *RootDependencies, path string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	file, err := rootDependencies.Manager.Open(path)
	if err != nil {
		if errors.Is(err, live_file.ErrNotFound) {
			return fmt.Errorf("no such file: %s", path)
		}
		return err
	}
	defer file.Close()

	contents, err := file.Contents()
	if err != nil {
		return err
	}

	err = utils.RenderContentWithContext(ctx, os.Stdout, file.Path(), contents, rootDependencies.Config.Theme, rootDependencies.Config.Highlight)
	if errors.Is(err, context.Canceled) {
		fmt.Println(lipgloss.Yellow.Render("\n🔄 Exiting..."))
		return nil
	}
	return err
}
