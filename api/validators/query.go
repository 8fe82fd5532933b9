package validators

import (
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// ParseQueryDate reads a YYYY-MM-DD query parameter, returning defaultVal when
// the parameter is absent.
func ParseQueryDate(r *http.Request, key, defaultVal string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	if _, err := time.Parse(dateLayout, raw); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a YYYY-MM-DD date").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}

// RequireQuery reads a non-empty query parameter.
func RequireQuery(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}
