package db2

import (
	"fmt"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
)

// DefaultPort returns the default Db2 port.
func DefaultPort() int {
	return 50000
}

// DefaultDriverName is the database/sql driver name registered by github.com/ibmdb/go_ibm_db.
// The driver needs cgo and the IBM CLI client, so only binaries built with -tags db2 link it.
const DefaultDriverName = "go_ibm_db"

// BuildConnectionString builds the Db2 CLI connection string.
// The SSL clause is appended only when a server certificate is configured.
// Values are not escaped and the host is never rewritten.
func BuildConnectionString(c datasource.Credentials) string {
	connString := fmt.Sprintf(
		"DATABASE=%s;HOSTNAME=%s;PORT=%d;PROTOCOL=TCPIP;UID=%s;PWD=%s;",
		c.Database, c.Host, c.Port, c.User, c.Password,
	)
	if c.CertificateFile != "" {
		connString += fmt.Sprintf("Security=SSL;SSLServerCertificate=%s", c.CertificateFile)
	}
	return connString
}
