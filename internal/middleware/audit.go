package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vergon/rgr-api/internal/model"
)

// AuditSink receives finished audit entries. Implementations are expected
// to be quick or to buffer internally; Record is called on a detached
// goroutine so a slow sink never delays the response.
type AuditSink interface {
	Record(ctx context.Context, entry model.AuditLog)
}

// sensitiveFields are scrubbed from request bodies before they reach the
// audit trail.
var sensitiveFields = map[string]struct{}{
	"password":     {},
	"token":        {},
	"refreshtoken": {},
	"accesstoken":  {},
	"secret":       {},
}

// Audit returns a middleware that records one audit entry per mutating
// request against the named resource. The entry carries the acting user,
// an action derived from the HTTP method, the target id and a redacted
// copy of the request body. Read-only requests are not recorded.
func Audit(sink AuditSink, resource string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			action := actionForMethod(c.Request().Method)
			if action == "" {
				return next(c)
			}

			// Buffer the body so the handler can still read it.
			var body []byte
			if c.Request().Body != nil {
				body, _ = io.ReadAll(c.Request().Body)
				c.Request().Body = io.NopCloser(bytes.NewReader(body))
			}

			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status >= http.StatusBadRequest {
				return nil
			}

			entry := model.AuditLog{
				Action:     action,
				Resource:   resource,
				ResourceID: c.Param("id"),
				Details:    redactBody(body),
				IPAddress:  c.RealIP(),
				UserAgent:  c.Request().UserAgent(),
			}
			if id, ok := CurrentIdentity(c); ok {
				entry.UserLogin = id.Login
				entry.CompanyID = id.TenantID
			}

			// The request context is done once the response is written, so
			// the sink gets a fresh one.
			go sink.Record(context.Background(), entry)
			return nil
		}
	}
}

func actionForMethod(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return ""
	}
}

// redactBody returns the request body as JSON with credential-bearing
// fields replaced. Non-JSON bodies are dropped rather than logged raw.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for k := range payload {
		if _, hit := sensitiveFields[strings.ToLower(k)]; hit {
			payload[k] = "[REDACTED]"
		}
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(out)
}
