package datasource

// Credentials are the inputs of a connection descriptor.
// They are turned into a connection string on every open and never persisted.
type Credentials struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	CertificateFile string // optional; enables TLS on engines that take a server certificate
	SSLMode         string // optional; dialect specific
}

// ConnectionStringBuilder turns credentials into a dialect's connection descriptor.
type ConnectionStringBuilder func(Credentials) string
