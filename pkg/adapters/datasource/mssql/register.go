package mssql

import (
	_ "embed"

	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" database/sql driver

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/sqlclient"
)

//go:embed queries.yaml
var queriesYAML []byte

// Queries returns the default SQL Server catalog query templates.
func Queries() *datasource.QuerySet {
	return datasource.MustParseQuerySet(queriesYAML)
}

func init() {
	datasource.Register(datasource.DialectRegistration{
		Info: datasource.DialectInfo{
			Type:        "sqlserver",
			DisplayName: "Microsoft SQL Server",
			Description: "Connect to SQL Server 2016+, Azure SQL Database",
		},
		DriverName:       "sqlserver",
		ConnectionString: BuildConnectionString,
		Queries:          Queries(),
		NewClient:        sqlclient.New,
	})
}
