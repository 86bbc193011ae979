package handle

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/app/services"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/xpkg/logger"
)

type OrderHandler struct {
	orderService     *services.OrderService
	lifecycleService *services.LifecycleService
	receipts         *ReceiptStore
	mylog            logger.Logger
}

func NewOrderHandler(
	orderService *services.OrderService,
	lifecycleService *services.LifecycleService,
	receipts *ReceiptStore,
	mylog logger.Logger,
) *OrderHandler {
	return &OrderHandler{
		orderService:     orderService,
		lifecycleService: lifecycleService,
		receipts:         receipts,
		mylog:            mylog,
	}
}

func (oh *OrderHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.PlaceOrderRequest
		if err := decodeJSON(r, &req); err != nil {
			oh.mylog.Action("parse_failed").Warn("Failed to parse order", "error", err.Error())
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		order, err := oh.orderService.PlaceOrder(ctx, req)
		if err != nil {
			serviceError(w, oh.mylog, err)
			return
		}

		jsonResponse(w, http.StatusCreated, dto.OrderResponse{
			Message: "Order placed successfully",
			Order:   &order,
		})
	}
}

func (oh *OrderHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		orders, err := oh.orderService.ListOrders(ctx)
		if err != nil {
			serviceError(w, oh.mylog, err)
			return
		}
		jsonResponse(w, http.StatusOK, orders)
	}
}

func (oh *OrderHandler) SetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.StatusRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		res, err := oh.lifecycleService.SetStatus(ctx, r.PathValue("id"), req.Status)
		if err != nil {
			serviceError(w, oh.mylog, err)
			return
		}

		if res.Archived {
			jsonResponse(w, http.StatusOK, dto.OrderResponse{Message: "Order moved to history"})
			return
		}
		jsonResponse(w, http.StatusOK, dto.OrderResponse{
			Message: "Order status updated",
			Order:   res.Order,
		})
	}
}

// AttachPayment accepts a multipart form with a "receipt" file plus
// "referenceNumber" and "amountSent" fields. The stored file is removed again
// when the order cannot be updated.
func (oh *OrderHandler) AttachPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mylog := oh.mylog.Action("attach_payment")

		r.Body = http.MaxBytesReader(w, r.Body, core.MaxReceiptSize)
		if err := r.ParseMultipartForm(core.MaxReceiptSize); err != nil {
			jsonError(w, http.StatusBadRequest, fmt.Errorf("%w: invalid multipart form", core.ErrValidation))
			return
		}

		amountSent, err := strconv.ParseFloat(r.FormValue("amountSent"), 64)
		if err != nil || amountSent < 0 {
			jsonError(w, http.StatusBadRequest, fmt.Errorf("%w: amountSent must be a non-negative number", core.ErrValidation))
			return
		}

		file, header, err := r.FormFile("receipt")
		if err != nil {
			jsonError(w, http.StatusBadRequest, fmt.Errorf("receipt: %w", core.ErrFieldIsEmpty))
			return
		}
		defer file.Close()

		receiptPath, remove, err := oh.receipts.Stage(file, header)
		if err != nil {
			mylog.Error("Failed to store receipt", err)
			jsonError(w, http.StatusInternalServerError, errInternal)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		order, err := oh.orderService.AttachPaymentProof(ctx, dto.PaymentProof{
			OrderID:         r.PathValue("id"),
			ReceiptPath:     receiptPath,
			ReferenceNumber: r.FormValue("referenceNumber"),
			AmountSent:      amountSent,
		})
		if err != nil {
			if rmErr := remove(); rmErr != nil {
				mylog.Error("Failed to remove staged receipt", rmErr, "receipt_path", receiptPath)
			}
			serviceError(w, oh.mylog, err)
			return
		}

		jsonResponse(w, http.StatusOK, dto.OrderResponse{
			Message: "Payment proof uploaded",
			Order:   &order,
		})
	}
}
