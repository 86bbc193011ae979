package handle

import (
	"context"
	"net/http"
	"time"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/app/services"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/xpkg/logger"
)

type ClientOrderHandler struct {
	clients *services.ClientOrderService
	mylog   logger.Logger
}

func NewClientOrderHandler(clients *services.ClientOrderService, mylog logger.Logger) *ClientOrderHandler {
	return &ClientOrderHandler{clients: clients, mylog: mylog}
}

func (ch *ClientOrderHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.ClientOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		order, err := ch.clients.Create(ctx, req)
		if err != nil {
			serviceError(w, ch.mylog, err)
			return
		}
		jsonResponse(w, http.StatusCreated, order)
	}
}

func (ch *ClientOrderHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		orders, err := ch.clients.List(ctx)
		if err != nil {
			serviceError(w, ch.mylog, err)
			return
		}
		jsonResponse(w, http.StatusOK, orders)
	}
}

func (ch *ClientOrderHandler) SetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.StatusRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		order, err := ch.clients.SetStatus(ctx, r.PathValue("id"), req.Status)
		if err != nil {
			serviceError(w, ch.mylog, err)
			return
		}
		jsonResponse(w, http.StatusOK, order)
	}
}

func (ch *ClientOrderHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		if err := ch.clients.Delete(ctx, r.PathValue("id")); err != nil {
			serviceError(w, ch.mylog, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.MessageResponse{Message: "Client order deleted"})
	}
}
