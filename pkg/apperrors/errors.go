package apperrors

import "errors"

var (
	ErrConnectionClosed   = errors.New("connection closed")
	ErrInsertQuery        = errors.New("error generating insert query")
	ErrUnsupportedDialect = errors.New("unsupported dialect")
	ErrUnknownQuery       = errors.New("unknown catalog query")
	ErrInvalidNode        = errors.New("invalid explorer node")
)
