// Package commands implements the securechat CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"securechat/pkg/observability"
	"securechat/pkg/version"
)

var (
	username  string
	kind      string
	logLevel  string
	logFormat string
	logFile   string
	dev       bool

	logger *zap.Logger
)

// Execute runs the CLI.
func Execute() error {
	root := &cobra.Command{
		Use:     "securechat",
		Short:   "End-to-end encrypted chat over TCP or Bluetooth",
		Version: version.String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				if host, err := os.Hostname(); err == nil {
					username = host
				} else {
					username = "anonymous"
				}
			}

			var err error
			logger, err = observability.SetupLogger(observability.LogConfig{
				Level:       logLevel,
				Format:      logFormat,
				File:        logFile,
				Development: dev,
			})
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&username, "name", "n", "", "chat identity (default: hostname)")
	root.PersistentFlags().StringVarP(&kind, "transport", "t", "tcp", "transport kind: tcp or bt")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console or json")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "duplicate logs to a rotating file")
	root.PersistentFlags().BoolVar(&dev, "dev", false, "development logging")

	root.AddCommand(listenCmd(), connectCmd())
	return root.Execute()
}
