package postgres

import (
	_ "embed"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/sqlclient"
)

//go:embed queries.yaml
var queriesYAML []byte

// Queries returns the default PostgreSQL catalog query templates.
func Queries() *datasource.QuerySet {
	return datasource.MustParseQuerySet(queriesYAML)
}

func init() {
	datasource.Register(datasource.DialectRegistration{
		Info: datasource.DialectInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			Description: "Connect to PostgreSQL 12+, Aurora PostgreSQL, Supabase",
		},
		DriverName:       "pgx",
		ConnectionString: BuildConnectionString,
		Queries:          Queries(),
		NewClient:        sqlclient.New,
	})
}
