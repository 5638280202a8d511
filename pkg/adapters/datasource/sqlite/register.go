package sqlite

import (
	_ "embed"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/sqlclient"
)

//go:embed queries.yaml
var queriesYAML []byte

// Queries returns the default SQLite catalog query templates.
func Queries() *datasource.QuerySet {
	return datasource.MustParseQuerySet(queriesYAML)
}

func init() {
	datasource.Register(datasource.DialectRegistration{
		Info: datasource.DialectInfo{
			Type:        "sqlite",
			DisplayName: "SQLite",
			Description: "Open a local SQLite database file",
		},
		DriverName:       "sqlite",
		ConnectionString: BuildConnectionString,
		Queries:          Queries(),
		NewClient:        sqlclient.New,
	})
}
