package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/xpkg/logger"
)

var errInternal = errors.New("internal server error")

// jsonResponse writes the given data as a JSON-encoded HTTP response.
func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// jsonError writes an error response as JSON with the specified HTTP status code.
func jsonError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrItemNotFound), errors.Is(err, core.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrMaxConcurrentExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// serviceError writes err with its mapped status. Storage and unknown
// failures are logged and reported without detail.
func serviceError(w http.ResponseWriter, mylog logger.Logger, err error) {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		mylog.Action("request_failed").Error("Request failed", err)
		jsonError(w, code, errInternal)
		return
	}
	jsonError(w, code, err)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: failed to parse JSON", core.ErrValidation)
	}
	return nil
}
