package mssql

import (
	"fmt"
	"net/url"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
)

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// DefaultConnectionTimeout returns the default connection timeout in seconds.
func DefaultConnectionTimeout() int {
	return 30
}

// BuildConnectionString builds a sqlserver:// URL for SQL Server authentication.
// SSLMode maps to the driver's encrypt setting ("disable" turns it off,
// "trust" keeps it on but skips certificate validation); a certificate file
// pins the server certificate.
func BuildConnectionString(c datasource.Credentials) string {
	port := c.Port
	if port == 0 {
		port = DefaultPort()
	}

	query := url.Values{}
	query.Add("database", c.Database)

	switch c.SSLMode {
	case "disable":
		query.Add("encrypt", "false")
	case "trust":
		query.Add("encrypt", "true")
		query.Add("TrustServerCertificate", "true")
	default:
		query.Add("encrypt", "true")
	}

	if c.CertificateFile != "" {
		query.Add("certificate", c.CertificateFile)
	}
	query.Add("connection timeout", fmt.Sprintf("%d", DefaultConnectionTimeout()))

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		port,
		query.Encode(),
	)
}
