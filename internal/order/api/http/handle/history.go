package handle

import (
	"context"
	"net/http"
	"time"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/app/services"
	"wildcats-food-express/internal/xpkg/logger"
)

type HistoryHandler struct {
	history *services.HistoryService
	mylog   logger.Logger
}

func NewHistoryHandler(history *services.HistoryService, mylog logger.Logger) *HistoryHandler {
	return &HistoryHandler{history: history, mylog: mylog}
}

func (hh *HistoryHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		orders, err := hh.history.QueryByUser(ctx)
		if err != nil {
			serviceError(w, hh.mylog, err)
			return
		}
		jsonResponse(w, http.StatusOK, orders)
	}
}
