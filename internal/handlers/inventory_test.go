package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/teashop/apiserver/internal/services"
	"github.com/teashop/apiserver/internal/store"
	"github.com/teashop/apiserver/types"
)

// fakeItemRepo is an in-memory ItemRepository with the same conditional
// update semantics as the SQL store.
type fakeItemRepo struct {
	nextID int64
	items  map[int64]types.InventoryItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{nextID: 1, items: map[int64]types.InventoryItem{}}
}

func (f *fakeItemRepo) List(ctx context.Context) ([]types.InventoryItem, error) {
	items := make([]types.InventoryItem, 0, len(f.items))
	for _, item := range f.items {
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeItemRepo) Get(ctx context.Context, id int64) (types.InventoryItem, error) {
	item, ok := f.items[id]
	if !ok {
		return types.InventoryItem{}, store.ErrNotFound
	}
	return item, nil
}

func (f *fakeItemRepo) Create(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error) {
	item.ID = f.nextID
	f.nextID++
	item.Sales = types.SalesHistory{}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItemRepo) Replace(ctx context.Context, item types.InventoryItem) (types.InventoryItem, error) {
	current, ok := f.items[item.ID]
	if !ok {
		return types.InventoryItem{}, store.ErrNotFound
	}
	item.Sales = current.Sales
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItemRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemRepo) IncrementQuantity(ctx context.Context, id int64, change int64) (types.InventoryItem, error) {
	item, ok := f.items[id]
	if !ok {
		return types.InventoryItem{}, store.ErrNotFound
	}
	if item.Quantity+change < 0 {
		return types.InventoryItem{}, store.ErrNegativeQuantity
	}
	item.Quantity += change
	f.items[id] = item
	return item, nil
}

func (f *fakeItemRepo) SetQuantity(ctx context.Context, id int64, quantity int64) (types.InventoryItem, error) {
	item, ok := f.items[id]
	if !ok {
		return types.InventoryItem{}, store.ErrNotFound
	}
	item.Quantity = quantity
	f.items[id] = item
	return item, nil
}

func (f *fakeItemRepo) AdjustSale(ctx context.Context, id int64, date string, change int64) (types.InventoryItem, error) {
	item, ok := f.items[id]
	if !ok {
		return types.InventoryItem{}, store.ErrNotFound
	}
	if change > 0 && item.Quantity < change {
		return types.InventoryItem{}, store.ErrInsufficientStock
	}
	if item.Sales == nil {
		item.Sales = types.SalesHistory{}
	}
	item.Sales[date] += change
	item.Quantity -= change
	f.items[id] = item
	return item, nil
}

func (f *fakeItemRepo) GetSaleCount(ctx context.Context, id int64, date string) (int64, error) {
	item, ok := f.items[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	return item.Sales[date], nil
}

func (f *fakeItemRepo) SetSaleCount(ctx context.Context, id int64, date string, count int64) error {
	item, ok := f.items[id]
	if !ok {
		return store.ErrNotFound
	}
	if item.Sales == nil {
		item.Sales = types.SalesHistory{}
	}
	item.Sales[date] = count
	f.items[id] = item
	return nil
}

func (f *fakeItemRepo) DeleteSaleEntry(ctx context.Context, id int64, date string) error {
	item, ok := f.items[id]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := item.Sales[date]; !ok {
		return store.ErrNotFound
	}
	delete(item.Sales, date)
	f.items[id] = item
	return nil
}

func newInventoryRouter() (*chi.Mux, *fakeItemRepo) {
	repo := newFakeItemRepo()
	inventory := services.NewInventoryService(repo, nil, nil, 5, nil)
	reports := services.NewReportService(repo, nil)

	router := chi.NewRouter()
	router.Route("/api/inventory", func(r chi.Router) {
		InventoryRouter(r, inventory, reports)
	})
	return router, repo
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createItem(t *testing.T, router http.Handler, quantity int64) types.InventoryItem {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/inventory/", ItemUpsertRequest{
		Name:     "Darjeeling First Flush",
		Quantity: quantity,
		Price:    12.50,
		Supplier: "Makaibari Estate",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var item types.InventoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	return item
}

func TestItemLifecycle(t *testing.T) {
	router, _ := newInventoryRouter()

	created := createItem(t, router, 10)
	require.NotZero(t, created.ID)
	require.NotNil(t, created.Sales)
	require.Empty(t, created.Sales)

	rec := doJSON(t, router, http.MethodGet, itemPath(created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched types.InventoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, created.Name, fetched.Name)
	require.Equal(t, created.Quantity, fetched.Quantity)

	rec = doJSON(t, router, http.MethodPut, itemPath(created.ID), ItemUpsertRequest{
		Name:     "Darjeeling Second Flush",
		Quantity: 20,
		Price:    14.00,
		Supplier: "Makaibari Estate",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var replaced types.InventoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replaced))
	require.Equal(t, "Darjeeling Second Flush", replaced.Name)
	require.Equal(t, int64(20), replaced.Quantity)

	rec = doJSON(t, router, http.MethodDelete, itemPath(created.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, itemPath(created.ID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReplaceItem_KeepsSalesHistory(t *testing.T) {
	router, repo := newInventoryRouter()
	item := createItem(t, router, 10)
	require.NoError(t, repo.SetSaleCount(context.Background(), item.ID, "2025-03-01", 7))

	rec := doJSON(t, router, http.MethodPut, itemPath(item.ID), ItemUpsertRequest{
		Name: "Renamed", Quantity: 10, Price: 9.99, Supplier: "Same",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var replaced types.InventoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &replaced))
	require.Equal(t, int64(7), replaced.Sales["2025-03-01"])
}

func TestGetItem_BadID(t *testing.T) {
	router, _ := newInventoryRouter()

	for _, path := range []string{
		"/api/inventory/abc",
		"/api/inventory/0",
		"/api/inventory/-3",
	} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)
	}
}

func TestCreateItem_Validation(t *testing.T) {
	router, _ := newInventoryRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/inventory/", ItemUpsertRequest{
		Name: "", Quantity: 5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/inventory/", ItemUpsertRequest{
		Name: "Assam", Quantity: -1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustSales_Flow(t *testing.T) {
	router, _ := newInventoryRouter()
	item := createItem(t, router, 10)

	rec := doJSON(t, router, http.MethodPatch, itemPath(item.ID)+"/sales/adjust", SalesAdjustRequest{
		Date: "2025-01-15", Change: 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var after types.InventoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	require.Equal(t, int64(7), after.Quantity)
	require.Equal(t, int64(3), after.Sales["2025-01-15"])

	rec = doJSON(t, router, http.MethodPatch, itemPath(item.ID)+"/sales/adjust", SalesAdjustRequest{
		Date: "2025-01-15", Change: -1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	require.Equal(t, int64(8), after.Quantity)
	require.Equal(t, int64(2), after.Sales["2025-01-15"])

	rec = doJSON(t, router, http.MethodPatch, itemPath(item.ID)+"/sales/adjust", SalesAdjustRequest{
		Date: "2025-01-15", Change: 100,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "insufficient stock")

	rec = doJSON(t, router, http.MethodPatch, itemPath(item.ID)+"/sales/adjust", SalesAdjustRequest{
		Date: "15/01/2025", Change: 1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/api/inventory/999/sales/adjust", SalesAdjustRequest{
		Date: "2025-01-15", Change: 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuantityEndpoints(t *testing.T) {
	router, _ := newInventoryRouter()
	item := createItem(t, router, 10)

	rec := doJSON(t, router, http.MethodPatch, itemPath(item.ID)+"/quantity", QuantityChangeRequest{Change: 5})
	require.Equal(t, http.StatusOK, rec.Code)

	var after types.InventoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	require.Equal(t, int64(15), after.Quantity)

	rec = doJSON(t, router, http.MethodPatch, itemPath(item.ID)+"/quantity", QuantityChangeRequest{Change: -20})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, itemPath(item.ID)+"/set_quantity", SetQuantityRequest{Quantity: 3})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	require.Equal(t, int64(3), after.Quantity)

	rec = doJSON(t, router, http.MethodPatch, itemPath(item.ID)+"/set_quantity", SetQuantityRequest{Quantity: -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSalesLedgerEndpoints(t *testing.T) {
	router, _ := newInventoryRouter()
	item := createItem(t, router, 10)

	rec := doJSON(t, router, http.MethodGet, itemPath(item.ID)+"/sales/2025-02-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var count SalesCountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &count))
	require.Equal(t, int64(0), count.Count)

	rec = doJSON(t, router, http.MethodPost, "/api/inventory/sales/update", SalesUpdateRequest{
		ItemID: item.ID, Date: "2025-02-01", Count: 42,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sales updated")

	rec = doJSON(t, router, http.MethodGet, itemPath(item.ID)+"/sales/2025-02-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &count))
	require.Equal(t, int64(42), count.Count)

	// Overwriting the ledger never moves stock.
	rec = doJSON(t, router, http.MethodGet, itemPath(item.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current types.InventoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &current))
	require.Equal(t, int64(10), current.Quantity)

	rec = doJSON(t, router, http.MethodDelete, itemPath(item.ID)+"/sales/2025-02-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sales entry deleted")

	rec = doJSON(t, router, http.MethodDelete, itemPath(item.ID)+"/sales/2025-02-01", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSaleCount_UnknownItem(t *testing.T) {
	router, _ := newInventoryRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/inventory/sales/update", SalesUpdateRequest{
		ItemID: 404, Date: "2025-02-01", Count: 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportReport_StorageDisabled(t *testing.T) {
	router, _ := newInventoryRouter()
	item := createItem(t, router, 10)

	rec := doJSON(t, router, http.MethodPost, itemPath(item.ID)+"/reports", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func itemPath(id int64) string {
	return fmt.Sprintf("/api/inventory/%d", id)
}
