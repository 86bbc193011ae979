package handle

import (
	"context"
	"net/http"
	"time"

	"wildcats-food-express/internal/order/app/core"
)

// Health reports whether storage answers. A broken broker only degrades notifications.
func Health(store core.IStore, mb core.IRabbitMQ) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := map[string]string{"status": "ok", "database": "up", "rabbitmq": "disabled"}
		code := http.StatusOK

		if err := store.IsAlive(ctx); err != nil {
			resp["status"] = "unavailable"
			resp["database"] = "down"
			code = http.StatusServiceUnavailable
		}
		if mb != nil {
			resp["rabbitmq"] = "up"
			if err := mb.IsAlive(); err != nil {
				resp["rabbitmq"] = "down"
			}
		}

		jsonResponse(w, code, resp)
	}
}
