//go:build db2

package main

// The IBM driver needs cgo and the DB2 CLI client libraries (IBM_DB_HOME),
// so it is only linked into builds tagged db2.
import _ "github.com/ibmdb/go_ibm_db"
