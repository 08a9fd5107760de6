package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiankay999/Kay-Birks-website/internal/cart"
	"github.com/tiankay999/Kay-Birks-website/internal/catalog"
	"github.com/tiankay999/Kay-Birks-website/internal/domain"
)

type stubCartRepo struct{}

func (stubCartRepo) Load(context.Context) ([]domain.LineItem, error) {
	return nil, cart.ErrCartNotFound
}
func (stubCartRepo) Save(context.Context, []domain.LineItem) error { return nil }
func (stubCartRepo) Clear(context.Context) error                   { return nil }

type stubCatalog struct {
	products map[int64]*domain.Product
}

func (s stubCatalog) GetAllProducts(context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	for _, p := range s.products {
		products = append(products, p)
	}
	return products, nil
}

func (s stubCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func cartRouter(t *testing.T) (*chi.Mux, *cart.Store) {
	t.Helper()

	store := cart.NewStore(context.Background(), stubCartRepo{})
	cat := stubCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Name: "Arizona", Price: 50.00, DefaultColor: "#8B4513"},
	}}

	handler := NewCartHandler(store, cat, 5*time.Second)
	r := chi.NewRouter()
	r.Get("/api/cart", handler.GetCart)
	r.Post("/api/cart/items", handler.AddItem)
	r.Patch("/api/cart/items/{item_id}", handler.ChangeQuantity)
	r.Delete("/api/cart/items/{item_id}", handler.RemoveItem)
	r.Post("/api/cart/promo", handler.ApplyPromo)

	return r, store
}

func decodeCart(t *testing.T, recorder *httptest.ResponseRecorder) CartResponseDTO {
	t.Helper()
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	return resp
}

func TestGetCart_Empty(t *testing.T) {
	router, _ := cartRouter(t)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/cart", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	resp := decodeCart(t, recorder)
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.Count)
	assert.Zero(t, resp.Totals.Total)
}

func TestAddItem_Success(t *testing.T) {
	router, _ := cartRouter(t)

	body := bytes.NewBufferString(`{"productId":1,"color":"#000000"}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/cart/items", body))

	require.Equal(t, http.StatusCreated, recorder.Code)
	resp := decodeCart(t, recorder)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Arizona", resp.Items[0].Name)
	assert.Equal(t, "#000000", resp.Items[0].ColorTag)
	assert.InDelta(t, 50.00, resp.Totals.Subtotal, 0.001)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	router, _ := cartRouter(t)

	body := bytes.NewBufferString(`{"productId":99}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/cart/items", body))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAddItem_InvalidProductID(t *testing.T) {
	router, _ := cartRouter(t)

	body := bytes.NewBufferString(`{"productId":0}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/cart/items", body))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestChangeQuantity_InvalidDelta(t *testing.T) {
	router, store := cartRouter(t)
	item := store.AddItem(context.Background(), domain.Product{ID: 1, Name: "Arizona", Price: 50}, "", false)

	body := bytes.NewBufferString(`{"delta":5}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("PATCH", "/api/cart/items/"+item.ID, body))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestChangeQuantity_Increment(t *testing.T) {
	router, store := cartRouter(t)
	item := store.AddItem(context.Background(), domain.Product{ID: 1, Name: "Arizona", Price: 50}, "", false)

	body := bytes.NewBufferString(`{"delta":1}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("PATCH", "/api/cart/items/"+item.ID, body))

	require.Equal(t, http.StatusOK, recorder.Code)
	resp := decodeCart(t, recorder)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
}

func TestRemoveItem_ThenCartEmpty(t *testing.T) {
	router, store := cartRouter(t)
	item := store.AddItem(context.Background(), domain.Product{ID: 1, Name: "Arizona", Price: 50}, "", false)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/api/cart/items/"+item.ID, nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, decodeCart(t, recorder).Items)
}

func TestApplyPromo_Valid(t *testing.T) {
	router, store := cartRouter(t)
	store.AddItem(context.Background(), domain.Product{ID: 1, Name: "Arizona", Price: 50}, "", false)
	store.AddItem(context.Background(), domain.Product{ID: 1, Name: "Arizona", Price: 50}, "", false)

	body := bytes.NewBufferString(`{"code":"save20"}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/cart/promo", body))

	require.Equal(t, http.StatusOK, recorder.Code)
	resp := decodeCart(t, recorder)
	assert.InDelta(t, 20.00, resp.Totals.Discount, 0.001)
}

func TestApplyPromo_Invalid(t *testing.T) {
	router, _ := cartRouter(t)

	body := bytes.NewBufferString(`{"code":"bogus"}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/api/cart/promo", body))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errResp))
	assert.Equal(t, "invalid_promo_code", errResp.Code)
}
