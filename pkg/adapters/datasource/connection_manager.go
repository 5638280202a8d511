package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/logging"
	"github.com/ekaya-inc/ekaya-db2/pkg/retry"
)

// State is the lifecycle of the connection owned by a ConnectionManager.
type State int

const (
	StateUninitialized State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ConnectionManagerConfig holds configuration for the connection manager
type ConnectionManagerConfig struct {
	Client      Client
	Credentials Credentials
	Builder     ConnectionStringBuilder

	// OpenRetries is how many times a transient open failure is retried.
	// Zero returns the first failure unchanged.
	OpenRetries int
}

// ConnectionManager owns the single connection of a connector instance.
// Open and Close are serialized; the handle is reused until Close.
type ConnectionManager struct {
	mu       sync.Mutex
	client   Client
	creds    Credentials
	builder  ConnectionStringBuilder
	retryCfg *retry.Config
	handle   Handle
	state    State
	opens    int
	openedAt time.Time
	logger   *zap.Logger
}

// NewConnectionManager creates a manager in the Uninitialized state.
func NewConnectionManager(cfg ConnectionManagerConfig, logger *zap.Logger) *ConnectionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionManager{
		client:   cfg.Client,
		creds:    cfg.Credentials,
		builder:  cfg.Builder,
		retryCfg: retry.WithMaxRetries(cfg.OpenRetries),
		state:    StateUninitialized,
		logger:   logger,
	}
}

// Open returns the live handle, opening one first if none exists.
// Calling Open again without Close returns the same handle and does not reach the client.
// Open failures are returned unchanged and leave no handle behind.
func (m *ConnectionManager) Open(ctx context.Context) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		return m.handle, nil
	}

	if m.client == nil {
		return nil, fmt.Errorf("connection manager has no client")
	}
	if m.builder == nil {
		return nil, fmt.Errorf("connection manager has no connection string builder")
	}

	// Built fresh on every open; never stored.
	connString := m.builder(m.creds)

	m.logger.Debug("Opening connection",
		zap.String("descriptor", logging.SanitizeConnectionString(connString)),
	)

	handle, err := retry.DoWithResult(ctx, m.retryCfg, func() (Handle, error) {
		return m.client.Open(ctx, connString)
	})
	if err != nil {
		m.logger.Error("Failed to open connection",
			zap.String("host", m.creds.Host),
			zap.String("database", m.creds.Database),
			zap.String("error", logging.SanitizeError(err)),
		)
		return nil, err
	}

	m.handle = handle
	m.state = StateOpen
	m.opens++
	m.openedAt = time.Now()

	m.logger.Info("Connection opened",
		zap.String("host", m.creds.Host),
		zap.String("database", m.creds.Database),
	)
	return handle, nil
}

// Close releases the handle. It is a no-op when nothing is open.
// The handle is cleared even when the underlying close fails, and that
// failure is returned to the caller.
func (m *ConnectionManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return nil
	}

	handle := m.handle
	m.handle = nil
	m.state = StateClosed

	if err := handle.CloseSync(); err != nil {
		m.logger.Error("Failed to close connection",
			zap.String("error", logging.SanitizeError(err)),
		)
		return fmt.Errorf("close connection: %w", err)
	}

	m.logger.Info("Connection closed", zap.String("database", m.creds.Database))
	return nil
}

// TestConnection opens and immediately closes a connection.
// An open failure is returned unchanged.
func (m *ConnectionManager) TestConnection(ctx context.Context) error {
	if _, err := m.Open(ctx); err != nil {
		return err
	}
	return m.Close()
}

// State returns the current lifecycle state.
func (m *ConnectionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// GetStats returns a snapshot of the manager. Safe to call concurrently.
func (m *ConnectionManager) GetStats() ConnectionStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := ConnectionStats{
		State:    m.state.String(),
		Database: m.creds.Database,
		Host:     m.creds.Host,
		Opens:    m.opens,
	}
	if m.handle != nil {
		stats.OpenSeconds = int(time.Since(m.openedAt).Seconds())
	}
	return stats
}

// ConnectionStats contains statistics about the connection manager state.
type ConnectionStats struct {
	State       string `json:"state"`
	Host        string `json:"host"`
	Database    string `json:"database"`
	Opens       int    `json:"opens"`
	OpenSeconds int    `json:"open_seconds"`
}
