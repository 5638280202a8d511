package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/services"
)

func newTestCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Open and close the configured connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withConnector(func(c *services.Connector) error {
				if err := c.TestConnection(cmd.Context()); err != nil {
					return fmt.Errorf("connection test failed: %w", err)
				}
				if a.output == OutputJSON {
					return renderJSON(cmd.OutOrStdout(), c.Stats())
				}
				stats := c.Stats()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Connection OK (%s, database %s)\n", c.Dialect().DisplayName, stats.Database)
				return nil
			})
		},
	}
}

func newQueryCommand(a *app) *cobra.Command {
	var (
		file      string
		requestID string
	)

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run one or more ';'-separated statements",
		Long: `Run a batch of statements against the configured connection.

Each non-blank statement produces its own result. A failing statement is
reported in place and does not stop the rest of the batch.`,
		Example: `  ekaya-db2 query "SELECT * FROM SYSCAT.SCHEMATA FETCH FIRST 5 ROWS ONLY"
  ekaya-db2 query -f migrate.sql -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlText, err := readSQL(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			return a.withConnector(func(c *services.Connector) error {
				results, err := c.Query(cmd.Context(), sqlText, requestID)
				if err != nil {
					return err
				}
				if a.output == OutputJSON {
					return renderJSON(cmd.OutOrStdout(), results)
				}
				renderResults(cmd.OutOrStdout(), results)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read SQL from file (- for stdin)")
	cmd.Flags().StringVar(&requestID, "request-id", "", "correlation id copied to every result")
	return cmd
}

// readSQL returns the SQL text from the argument or from --file.
func readSQL(stdin io.Reader, file string, args []string) (string, error) {
	var sqlText string
	switch {
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		sqlText = string(b)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		sqlText = string(b)
	case len(args) == 1:
		sqlText = args[0]
	}

	if strings.TrimSpace(sqlText) == "" {
		return "", fmt.Errorf("no SQL given: pass it as an argument or with --file")
	}
	return sqlText, nil
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and available dialects",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "ekaya-db2 %s\n", a.version)
			for _, d := range datasource.RegisteredDialects() {
				_, _ = fmt.Fprintf(out, "  %-10s %s\n", d.Type, d.DisplayName)
			}
		},
	}
}
