package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	terrors "github.com/vango-dev/toast/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗┌─┐┌─┐┌─┐┌┬┐┌┬┐
   ║ │ │├─┤└─┐ │  ││
   ╩ └─┘┴ ┴└─┘ ┴ ─┴┘
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		var te *terrors.ToastError
		if errors.As(err, &te) {
			fmt.Fprint(os.Stderr, te.Format())
		} else {
			errorMsg(err.Error())
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toastd",
		Short: "Toast notification server",
		Long: `toastd keeps a registry of toast notifications and streams them to
browsers over WebSocket.

  • Show, update and close notifications over a JSON API
  • Debounced data watches that coalesce rapid changes
  • Cron-scheduled announcements
  • Prometheus metrics and OpenTelemetry spans`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		serveCmd(),
		sendCmd(),
		versionCmd(),
	)
	return cmd
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// Output helpers.

func success(msg string) {
	fmt.Printf("\033[32m✓\033[0m %s\n", msg)
}

func info(msg string) {
	fmt.Printf("\033[36m→\033[0m %s\n", msg)
}

func warn(msg string) {
	fmt.Printf("\033[33m!\033[0m %s\n", msg)
}

func errorMsg(msg string) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", msg)
}
