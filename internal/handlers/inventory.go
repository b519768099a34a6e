package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/teashop/apiserver/internal/services"
	"github.com/teashop/apiserver/internal/store"
	"github.com/teashop/apiserver/types"
)

// InventoryHandler provides HTTP handlers for inventory items, quantity
// control, and the sales ledger.
type InventoryHandler struct {
	inventory *services.InventoryService
	reports   *services.ReportService
}

// NewInventoryHandler constructs a handler with the provided services.
func NewInventoryHandler(inventory *services.InventoryService, reports *services.ReportService) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventory,
		reports:   reports,
	}
}

// InventoryRouter registers inventory routes on the given router.
func InventoryRouter(r chi.Router, inventory *services.InventoryService, reports *services.ReportService) {
	handler := NewInventoryHandler(inventory, reports)

	r.Get("/", handler.ListItems)
	r.Post("/", handler.CreateItem)
	r.Post("/sales/update", handler.UpdateSaleCount)
	r.Route("/{itemID}", func(r chi.Router) {
		r.Get("/", handler.GetItem)
		r.Put("/", handler.ReplaceItem)
		r.Delete("/", handler.DeleteItem)
		r.Patch("/quantity", handler.AdjustQuantity)
		r.Patch("/set_quantity", handler.SetQuantity)
		r.Patch("/sales/adjust", handler.AdjustSales)
		r.Get("/sales/{date}", handler.GetSales)
		r.Delete("/sales/{date}", handler.DeleteSales)
		r.Post("/reports", handler.ExportReport)
	})
}

func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	req, err := decodeItemBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.inventory.Create(r.Context(), types.InventoryItem{
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Supplier: req.Supplier,
	})
	if err != nil {
		if errors.Is(err, store.ErrNegativeQuantity) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.inventory.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// ReplaceItem overwrites the item's fields; the sales history is left
// untouched.
func (h *InventoryHandler) ReplaceItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := decodeItemBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.inventory.Replace(r.Context(), types.InventoryItem{
		ID:       id,
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    req.Price,
		Supplier: req.Supplier,
	})
	if err != nil {
		h.writeItemError(w, err, "failed to update item")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.inventory.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AdjustQuantity applies a manual stock correction, independent of sales.
func (h *InventoryHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req QuantityChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	item, err := h.inventory.IncrementQuantity(r.Context(), id, req.Change)
	if err != nil {
		h.writeItemError(w, err, "failed to adjust quantity")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	item, err := h.inventory.SetQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		h.writeItemError(w, err, "failed to set quantity")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// AdjustSales records sales (change > 0) or undoes them (change < 0) for
// a calendar date, moving stock atomically with the ledger entry.
func (h *InventoryHandler) AdjustSales(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SalesAdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	item, err := h.inventory.AdjustSale(r.Context(), id, req.Date, req.Change)
	if err != nil {
		h.writeItemError(w, err, "failed to adjust sales")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// UpdateSaleCount overwrites a date's sale count with no stock change.
func (h *InventoryHandler) UpdateSaleCount(w http.ResponseWriter, r *http.Request) {
	var req SalesUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ItemID < 1 {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.inventory.SetSaleCount(r.Context(), req.ItemID, req.Date, req.Count); err != nil {
		h.writeItemError(w, err, "failed to update sales")
		return
	}

	writeJSON(w, http.StatusOK, SalesUpdateResponse{
		Message: "sales updated",
		Date:    req.Date,
		Count:   req.Count,
	})
}

func (h *InventoryHandler) GetSales(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date := chi.URLParam(r, "date")

	count, err := h.inventory.GetSaleCount(r.Context(), id, date)
	if err != nil {
		h.writeItemError(w, err, "failed to fetch sales")
		return
	}

	writeJSON(w, http.StatusOK, SalesCountResponse{Date: date, Count: count})
}

func (h *InventoryHandler) DeleteSales(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date := chi.URLParam(r, "date")

	if err := h.inventory.DeleteSaleEntry(r.Context(), id, date); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "sales entry not found")
			return
		}
		h.writeItemError(w, err, "failed to delete sales entry")
		return
	}

	writeJSON(w, http.StatusOK, SalesDeleteResponse{
		Message: "sales entry deleted",
		Date:    date,
	})
}

// ExportReport archives the item's sales history as CSV in object storage.
func (h *InventoryHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ref, err := h.reports.ExportSales(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStorageDisabled):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "item not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to export report")
		}
		return
	}

	writeJSON(w, http.StatusCreated, ref)
}

// writeItemError maps service/store failures onto the HTTP error
// contract shared by the mutation endpoints.
func (h *InventoryHandler) writeItemError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, store.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, "insufficient stock")
	case errors.Is(err, store.ErrNegativeQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidDate), errors.Is(err, services.ErrZeroChange):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// ItemUpsertRequest is the create/replace payload.
type ItemUpsertRequest struct {
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Supplier string  `json:"supplier"`
}

type QuantityChangeRequest struct {
	Change int64 `json:"change"`
}

type SetQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

type SalesAdjustRequest struct {
	Date   string `json:"date"`
	Change int64  `json:"change"`
}

type SalesUpdateRequest struct {
	ItemID int64  `json:"item_id"`
	Date   string `json:"date"`
	Count  int64  `json:"count"`
}

type SalesUpdateResponse struct {
	Message string `json:"message"`
	Date    string `json:"date"`
	Count   int64  `json:"count"`
}

type SalesCountResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type SalesDeleteResponse struct {
	Message string `json:"message"`
	Date    string `json:"date"`
}

func decodeItemBody(r *http.Request) (ItemUpsertRequest, error) {
	var req ItemUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ItemUpsertRequest{}, errors.New("invalid request")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return ItemUpsertRequest{}, errors.New("name is required")
	}
	return req, nil
}
