// Package cli provides the ekaya-db2 command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/config"
	"github.com/ekaya-inc/ekaya-db2/pkg/logging"
	"github.com/ekaya-inc/ekaya-db2/pkg/services"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	version  string
	cfgFile  string
	logLevel string
	output   string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd creates the root command.
func NewRootCmd(version string) *cobra.Command {
	a := &app{version: version}

	rootCmd := &cobra.Command{
		Use:   "ekaya-db2",
		Short: "DB2 connector exposed over MCP",
		Long: `ekaya-db2 connects to one relational database (DB2 by default) and exposes
query execution, catalog browsing, name search and INSERT templates, either
as an MCP server (serve) or directly from the command line.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "version", "completion", "__complete":
				return nil
			}
			return a.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log_level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", OutputTable, "output format (table|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputTable, OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		newServeCommand(a),
		newTestCommand(a),
		newQueryCommand(a),
		newTreeCommand(a),
		newSearchCommand(a),
		newInsertQueryCommand(a),
		newVersionCommand(a),
	)

	return rootCmd
}

// Execute runs the root command with the process arguments.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func (a *app) load() error {
	switch a.output {
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", a.output, OutputTable, OutputJSON)
	}

	cfg, err := config.Load(a.cfgFile, a.version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// connector builds a connector for the configured connection.
// The caller closes it.
func (a *app) connector() (*services.Connector, error) {
	c, err := services.NewConnectorFromConfig(a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	return c, nil
}

// withConnector runs fn against a fresh connector and closes it afterwards.
func (a *app) withConnector(fn func(c *services.Connector) error) error {
	c, err := a.connector()
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			a.logger.Warn("Failed to close connection", zap.String("error", logging.SanitizeError(err)))
		}
	}()
	return fn(c)
}
