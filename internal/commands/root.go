package commands

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aqui-app/aqui-api/internal/config"
	"github.com/aqui-app/aqui-api/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	cfg       config.Config
	logger    *logrus.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "aqui-api",
	Short: "Aqui vendor marketplace API",
	Long: `aqui-api serves the Aqui HTTP API. Vendors go live at a location,
customers find them on the map. Without a subcommand it runs the server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	RunE: runServe,
}

// setup loads configuration and builds the process logger before any
// subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	cfg = config.Load()
	logger, logCloser = logging.New(logging.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		LogstashAddr: cfg.LogstashTCPAddr,
	})
	logrus.SetLevel(logger.GetLevel())
	logrus.SetFormatter(logger.Formatter)
	return nil
}

// SetVersion sets the build information reported by the version command.
func SetVersion(v, c string) {
	version = v
	commit = c
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("aqui-api %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}
