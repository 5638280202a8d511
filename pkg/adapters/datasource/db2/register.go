package db2

import (
	_ "embed"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/sqlclient"
)

//go:embed queries.yaml
var queriesYAML []byte

// Queries returns the default Db2 catalog query templates.
func Queries() *datasource.QuerySet {
	return datasource.MustParseQuerySet(queriesYAML)
}

func init() {
	datasource.Register(datasource.DialectRegistration{
		Info: datasource.DialectInfo{
			Type:        "db2",
			DisplayName: "IBM Db2",
			Description: "Connect to Db2 for LUW 11.1+ over TCP/IP",
		},
		DriverName:       DefaultDriverName,
		ConnectionString: BuildConnectionString,
		Queries:          Queries(),
		NewClient:        sqlclient.New,
	})
}
