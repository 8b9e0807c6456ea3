package cli

import (
	"log/slog"
	"os"

	"github.com/me/wisched/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking WISCHED_SERVER env var first.
func defaultServer() string {
	if s := os.Getenv("WISCHED_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the wisched CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wisched",
		Short: "wisched — preemptive real-time scheduling simulator",
		Long: "wisched simulates periodic task sets under EDF, RM and FIFO scheduling\n" +
			"and reports deadline misses, response times and CPU utilization.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "wisched server URL (or WISCHED_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newCompareCmd(),
		newExportCmd(),
		newTasksCmd(),
		newRunsCmd(),
		newSubmitCmd(),
	)

	return root
}
