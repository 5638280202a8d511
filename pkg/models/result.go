package models

import (
	"fmt"
	"time"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
)

const (
	// ErrorColumn is the single column of an error-shaped result.
	ErrorColumn = "Error"

	// MessageNoResults is attached to empty and error-shaped results.
	MessageNoResults = "No results returned or invalid query"
)

// QueryOKMessage is attached to a result with rows.
func QueryOKMessage(n int) string {
	return fmt.Sprintf("Query ok with %d results", n)
}

// QueryMessage is one timestamped message on a result.
type QueryMessage struct {
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
}

// QueryResult is the normalized outcome of one statement.
// Cols is empty iff the statement returned nothing or failed;
// a failed statement has Cols ["Error"] and a single {Error: message} row.
type QueryResult struct {
	ConnectionID string            `json:"connId"`
	RequestID    string            `json:"requestId,omitempty"`
	ResultID     string            `json:"resultId"`
	Cols         []string          `json:"cols"`
	Messages     []QueryMessage    `json:"messages"`
	Query        string            `json:"query"`
	Results      []*datasource.Row `json:"results"`
	Error        bool              `json:"error,omitempty"`
}
