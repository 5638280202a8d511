package postgres

import (
	"fmt"
	"net/url"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
)

// DefaultPort returns the default PostgreSQL port.
func DefaultPort() int {
	return 5432
}

// DefaultSSLMode returns the default SSL mode.
func DefaultSSLMode() string {
	return "require"
}

// BuildConnectionString builds a PostgreSQL URL with proper escaping.
// All user-provided fields are URL-escaped so characters like @, /, # and ?
// in passwords cannot break URL parsing or inject parameters.
// A configured certificate file becomes sslrootcert.
func BuildConnectionString(c datasource.Credentials) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = DefaultSSLMode()
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort()
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	if c.CertificateFile != "" {
		query.Set("sslrootcert", c.CertificateFile)
	}

	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		port,
		url.QueryEscape(c.Database),
		query.Encode(),
	)
}
