package utils

import (
	"context"
	"fmt"

	"github.com/meysamhadeli/livefile/constants/lipgloss"
)

// GracefulShutdown waits for ctx to be cancelled (Ctrl+C), runs cleanup once and cancels.
func GracefulShutdown(ctx context.Context, cancel context.CancelFunc, cleanup func()) {
	<-ctx.Done()

	fmt.Println(lipgloss.Yellow.Render("\n🔄 Shutting down..."))
	if cleanup != nil {
		cleanup()
	}
	cancel()
}
