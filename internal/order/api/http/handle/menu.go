package handle

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/app/services"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/xpkg/logger"
)

type MenuHandler struct {
	inventory *services.InventoryService
	imagesDir string
	mylog     logger.Logger
}

func NewMenuHandler(inventory *services.InventoryService, imagesDir string, mylog logger.Logger) *MenuHandler {
	return &MenuHandler{inventory: inventory, imagesDir: imagesDir, mylog: mylog}
}

func (mh *MenuHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		items, err := mh.inventory.List(ctx)
		if err != nil {
			serviceError(w, mh.mylog, err)
			return
		}
		jsonResponse(w, http.StatusOK, items)
	}
}

func (mh *MenuHandler) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.MenuItemRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		item, err := mh.inventory.Create(ctx, req)
		if err != nil {
			serviceError(w, mh.mylog, err)
			return
		}
		jsonResponse(w, http.StatusCreated, item)
	}
}

func (mh *MenuHandler) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.MenuItemRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		item, err := mh.inventory.Update(ctx, r.PathValue("id"), req)
		if err != nil {
			serviceError(w, mh.mylog, err)
			return
		}
		jsonResponse(w, http.StatusOK, item)
	}
}

// Delete removes the item, then its image file. A missing image is not an error.
func (mh *MenuHandler) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		item, err := mh.inventory.Delete(ctx, r.PathValue("id"))
		if err != nil {
			serviceError(w, mh.mylog, err)
			return
		}

		if item.Image != "" {
			img := filepath.Join(mh.imagesDir, filepath.Base(item.Image))
			if err := os.Remove(img); err != nil && !errors.Is(err, fs.ErrNotExist) {
				mh.mylog.Action("image_remove_failed").Error("Failed to remove menu image", err, "image", img)
			}
		}
		jsonResponse(w, http.StatusOK, dto.MessageResponse{Message: "Menu item deleted"})
	}
}

func (mh *MenuHandler) Quantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		qty, err := mh.inventory.Quantity(ctx, r.PathValue("id"))
		if err != nil {
			serviceError(w, mh.mylog, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.QuantityResponse{Quantity: qty})
	}
}

func (mh *MenuHandler) Adjust() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.AdjustRequest
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), core.WaitTime*time.Second)
		defer cancel()

		item, err := mh.inventory.Adjust(ctx, r.PathValue("id"), req.QuantityChange)
		if err != nil {
			serviceError(w, mh.mylog, err)
			return
		}
		jsonResponse(w, http.StatusOK, item)
	}
}
