package main

import (
	"os"

	"github.com/ekaya-inc/ekaya-db2/pkg/cli"

	// Dialects register themselves with the datasource registry.
	_ "github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/db2"
	_ "github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/mssql"
	_ "github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/postgres"
	_ "github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/sqlite"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := cli.Execute(Version); err != nil {
		os.Exit(1)
	}
}
