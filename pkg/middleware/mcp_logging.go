package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/logging"
)

// maxArgumentLength caps logged string arguments.
const maxArgumentLength = 200

// MCPRequestLogger returns middleware that logs JSON-RPC requests sent to the
// MCP endpoint together with the outcome of each call. A nil logger disables it.
func MCPRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				logger.Error("Failed to read MCP request body", zap.Error(err))
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			var req rpcRequest
			if err := json.Unmarshal(body, &req); err != nil {
				// Batches and malformed bodies are left for the MCP server to reject.
				logger.Debug("Unparsed MCP request", zap.Error(err))
			}

			logger.Debug("MCP request",
				zap.String("method", req.Method),
				zap.String("tool", req.Params.Name),
				zap.Any("arguments", redactArguments(req.Params.Arguments)),
			)

			rec := &bodyRecorder{statusWriter: statusWriter{ResponseWriter: w, status: http.StatusOK}}
			start := time.Now()
			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("tool", req.Params.Name),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			}

			var resp rpcResponse
			if err := json.Unmarshal(rec.body.Bytes(), &resp); err == nil && resp.Error != nil {
				logger.Debug("MCP response error", append(fields,
					zap.Int("error_code", resp.Error.Code),
					zap.String("error_message", logging.SanitizeConnectionString(resp.Error.Message)),
				)...)
				return
			}
			logger.Debug("MCP response", fields...)
		})
	}
}

type rpcRequest struct {
	Method string `json:"method"`
	Params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"params"`
}

type rpcResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// bodyRecorder keeps a copy of the response body for the outcome log.
type bodyRecorder struct {
	statusWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.statusWriter.Write(b)
}

var credentialKeys = []string{"password", "secret", "token", "credential"}

// redactArguments hides credential-like keys, masks SQL and truncates long strings.
func redactArguments(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}

	out := make(map[string]any, len(args))
	for k, v := range args {
		lower := strings.ToLower(k)
		if containsAny(lower, credentialKeys) {
			out[k] = logging.RedactedText
			continue
		}

		s, ok := v.(string)
		switch {
		case !ok:
			out[k] = v
		case lower == "sql":
			out[k] = logging.SanitizeQuery(s)
		default:
			out[k] = logging.TruncateString(s, maxArgumentLength)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
