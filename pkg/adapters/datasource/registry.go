package datasource

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/apperrors"
)

// DialectInfo describes a registered dialect.
type DialectInfo struct {
	Type        string `json:"type"`         // "db2", "postgres", "sqlserver", "sqlite"
	DisplayName string `json:"display_name"` // "IBM Db2", "PostgreSQL"
	Description string `json:"description"`
}

// ClientFactory builds an engine client for a driver and a dialect's queries.
type ClientFactory func(driverName string, queries *QuerySet, logger *zap.Logger) Client

// DialectRegistration contains info and factories for one relational engine.
type DialectRegistration struct {
	Info DialectInfo

	// DriverName is the database/sql driver the dialect opens by default.
	DriverName string

	ConnectionString ConnectionStringBuilder
	Queries          *QuerySet
	NewClient        ClientFactory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]DialectRegistration)
)

// Register is called by each dialect's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg DialectRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// Lookup returns the registration for a dialect type.
func Lookup(dialect string) (DialectRegistration, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	reg, ok := registry[dialect]
	if !ok {
		return DialectRegistration{}, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedDialect, dialect)
	}
	return reg, nil
}

// RegisteredDialects returns info for all registered dialects sorted by type.
func RegisteredDialects() []DialectInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]DialectInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// IsRegistered checks if a dialect type is available.
func IsRegistered(dialect string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dialect]
	return ok
}
