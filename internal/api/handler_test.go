package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavani-weerakoon/restaurant/internal/domain/dish"
	"github.com/pavani-weerakoon/restaurant/internal/domain/order"
)

// --- In-memory repositories ---

type memDishRepo struct {
	dishes []dish.Dish
}

func (m *memDishRepo) GetByName(_ context.Context, name string) (*dish.Dish, error) {
	for i := range m.dishes {
		if m.dishes[i].Name == name {
			return &m.dishes[i], nil
		}
	}
	return nil, dish.ErrNotFound
}

func (m *memDishRepo) GetByIDs(_ context.Context, ids []string) ([]dish.Dish, error) {
	var out []dish.Dish
	for _, id := range ids {
		for i := range m.dishes {
			if m.dishes[i].ID == id {
				out = append(out, m.dishes[i])
			}
		}
	}
	return out, nil
}

func (m *memDishRepo) ListByCategory(_ context.Context, category string) ([]dish.Dish, error) {
	var out []dish.Dish
	for _, d := range m.dishes {
		if d.Category == category {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDishRepo) CreateIfAbsent(_ context.Context, d dish.Dish) (bool, error) {
	for _, existing := range m.dishes {
		if existing.Name == d.Name {
			return false, nil
		}
	}
	m.dishes = append(m.dishes, d)
	return true, nil
}

type memOrderRepo struct {
	orders []order.Order
}

func (m *memOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memOrderRepo) List(_ context.Context) ([]order.Order, error) {
	return m.orders, nil
}

func (m *memOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	for i := range m.orders {
		if m.orders[i].ID == id {
			return &m.orders[i], nil
		}
	}
	return nil, order.ErrNotFound
}

func (m *memOrderRepo) Update(_ context.Context, o *order.Order) error {
	for i := range m.orders {
		if m.orders[i].ID == o.ID {
			o.CreatedAt = m.orders[i].CreatedAt
			m.orders[i].MainDishID = o.MainDishID
			m.orders[i].SideDishIDs = o.SideDishIDs
			m.orders[i].DessertDishID = o.DessertDishID
			return nil
		}
	}
	return order.ErrNotFound
}

func (m *memOrderRepo) Delete(_ context.Context, id string) error {
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return order.ErrNotFound
}

// --- Test server setup ---

func testCatalog() *memDishRepo {
	mk := func(id, name, category, price string) dish.Dish {
		return dish.Dish{ID: id, Name: name, Category: category, Price: decimal.RequireFromString(price)}
	}
	return &memDishRepo{dishes: []dish.Dish{
		mk("m1", "Chicken Rice", dish.CategoryMain, "12.50"),
		mk("m2", "Beef Noodles", dish.CategoryMain, "13.00"),
		mk("s1", "Spring Rolls", dish.CategorySide, "4.00"),
		mk("s2", "Garden Salad", dish.CategorySide, "3.50"),
		mk("d1", "Ice Cream", dish.CategoryDessert, "3.50"),
	}}
}

func newTestServer(dishes dish.Repository, orders order.Repository) *httptest.Server {
	svc := order.NewService(dishes, orders)
	rep := order.NewReporter(dishes, orders)
	h := NewHandler(dishes, svc, rep)
	return httptest.NewServer(h.Routes())
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	var rdr *strings.Reader
	if body == "" {
		rdr = strings.NewReader("")
	} else {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

// --- Orders ---

func TestCreateOrder(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/orders", `{
		"mainDish": "Chicken Rice",
		"sideDishes": ["Spring Rolls", "Garden Salad"],
		"dessert": "Ice Cream"
	}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["id"])
	main := body["mainDish"].(map[string]any)
	assert.Equal(t, "Chicken Rice", main["name"])
	assert.InDelta(t, 12.50, main["price"], 0.001)
	assert.Len(t, body["sideDishes"], 2)
	dessert := body["dessert"].(map[string]any)
	assert.Equal(t, "Ice Cream", dessert["name"])
}

func TestCreateOrder_NoDessertOmitted(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/orders", `{
		"mainDish": "Chicken Rice",
		"sideDishes": ["Spring Rolls"]
	}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_, present := body["dessert"]
	assert.False(t, present, "dessert key omitted when absent")
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/orders", `{not json`)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid request body", body["message"])
}

func TestCreateOrder_MissingMainDish(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/orders", `{
		"sideDishes": ["Spring Rolls"]
	}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrder_UnknownDish(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/orders", `{
		"mainDish": "Unicorn Steak",
		"sideDishes": ["Spring Rolls"]
	}`)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["message"], "Unicorn Steak")
}

func TestCreateOrder_WrongCategory(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/orders", `{
		"mainDish": "Ice Cream",
		"sideDishes": ["Spring Rolls"]
	}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetOrder(t *testing.T) {
	id := uuid.New().String()
	orders := &memOrderRepo{orders: []order.Order{
		{ID: id, MainDishID: "m1", SideDishIDs: []string{"s1"}, CreatedAt: time.Now()},
	}}
	srv := newTestServer(testCatalog(), orders)
	defer srv.Close()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/orders/"+id, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["id"])
}

func TestGetOrder_NotFound(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/orders/"+uuid.New().String(), "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListOrders(t *testing.T) {
	orders := &memOrderRepo{orders: []order.Order{
		{ID: uuid.New().String(), MainDishID: "m1", SideDishIDs: []string{"s1"}},
		{ID: uuid.New().String(), MainDishID: "m2", SideDishIDs: []string{"s2"}},
	}}
	srv := newTestServer(testCatalog(), orders)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/orders", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 2)
}

func TestUpdateOrder(t *testing.T) {
	id := uuid.New().String()
	orders := &memOrderRepo{orders: []order.Order{
		{ID: id, MainDishID: "m1", SideDishIDs: []string{"s1"}, CreatedAt: time.Now()},
	}}
	srv := newTestServer(testCatalog(), orders)
	defer srv.Close()

	resp, body := doJSON(t, http.MethodPut, srv.URL+"/api/orders/"+id, `{
		"mainDish": "m2",
		"sideDishes": ["s2"],
		"dessert": "d1"
	}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	main := body["mainDish"].(map[string]any)
	assert.Equal(t, "Beef Noodles", main["name"])
}

func TestUpdateOrder_InvalidID(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/orders/not-a-uuid", `{
		"mainDish": "m1",
		"sideDishes": ["s1"]
	}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateOrder_NotFound(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/api/orders/"+uuid.New().String(), `{
		"mainDish": "m1",
		"sideDishes": ["s1"]
	}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteOrder(t *testing.T) {
	id := uuid.New().String()
	orders := &memOrderRepo{orders: []order.Order{
		{ID: id, MainDishID: "m1", SideDishIDs: []string{"s1"}},
	}}
	srv := newTestServer(testCatalog(), orders)
	defer srv.Close()

	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/orders/"+id, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body["message"], id)
	assert.Empty(t, orders.orders)
}

func TestDeleteOrder_NotFound(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodDelete, srv.URL+"/api/orders/"+uuid.New().String(), "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// --- Dishes ---

func TestListDishesByCategory(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/dishes/main", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "main", list[0]["category"])
}

// --- Reports ---

func TestDailySalesReport(t *testing.T) {
	orders := &memOrderRepo{orders: []order.Order{
		{ID: "o1", MainDishID: "m1", SideDishIDs: []string{"s1"}, CreatedAt: time.Now()},
	}}
	srv := newTestServer(testCatalog(), orders)
	defer srv.Close()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/reports/daily-sales", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 16.50, body["total"], 0.001)
}

func TestDailySalesReport_NoOrders(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/reports/daily-sales", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 0.0, body["total"], 0.001)
}

func TestPopularMainDishReport(t *testing.T) {
	orders := &memOrderRepo{orders: []order.Order{
		{ID: "o1", MainDishID: "m2", SideDishIDs: []string{"s1"}},
		{ID: "o2", MainDishID: "m2", SideDishIDs: []string{"s2"}},
		{ID: "o3", MainDishID: "m1", SideDishIDs: []string{"s1"}},
	}}
	srv := newTestServer(testCatalog(), orders)
	defer srv.Close()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/reports/popular-main-dish", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Beef Noodles", body["name"])
	assert.EqualValues(t, 2, body["count"])
}

func TestPopularMainDishReport_NoOrders(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/reports/popular-main-dish", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no orders found", body["message"])
}

func TestPopularSideDishReport(t *testing.T) {
	orders := &memOrderRepo{orders: []order.Order{
		{ID: "o1", MainDishID: "m1", SideDishIDs: []string{"s1", "s2"}},
		{ID: "o2", MainDishID: "m2", SideDishIDs: []string{"s2"}},
	}}
	srv := newTestServer(testCatalog(), orders)
	defer srv.Close()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/reports/popular-side-dish", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Garden Salad", body["name"])
	assert.EqualValues(t, 2, body["count"])
}

func TestCommonPairingReport(t *testing.T) {
	orders := &memOrderRepo{orders: []order.Order{
		{ID: "o1", MainDishID: "m1", SideDishIDs: []string{"s1", "s2"}},
		{ID: "o2", MainDishID: "m1", SideDishIDs: []string{"s1"}},
	}}
	srv := newTestServer(testCatalog(), orders)
	defer srv.Close()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/reports/common-pairing", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Chicken Rice", body["mainDish"])
	assert.Equal(t, "Spring Rolls", body["sideDish"])
	assert.EqualValues(t, 2, body["count"])
}

func TestCommonPairingReport_NoOrders(t *testing.T) {
	srv := newTestServer(testCatalog(), &memOrderRepo{})
	defer srv.Close()

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/reports/common-pairing", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no pairings found", body["message"])
}
