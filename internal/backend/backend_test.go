package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baderboshnak/golden-shen/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) (*httptest.Server, *Store) {
	store := NewStore()
	require.NoError(t, Seed(store))
	srv := httptest.NewServer(NewRouter(store))
	t.Cleanup(srv.Close)
	return srv, store
}

// doJSON issues a request and decodes the response body into a generic map.
func doJSON(t *testing.T, method, url, token string, body any) (int, map[string]any) {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func loginAs(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func firstProductID(t *testing.T, store *Store) string {
	t.Helper()
	products := store.Products()
	require.NotEmpty(t, products)
	return products[0].ID
}

func TestLogin_WrongPassword(t *testing.T) {
	srv, _ := setupServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"username": "demo",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.NotEmpty(t, body["error"])
}

func TestLogin_InactiveUser(t *testing.T) {
	srv, store := setupServer(t)
	users := store.Users()
	var demoID string
	for _, u := range users {
		if u.Username == "demo" {
			demoID = u.ID
		}
	}
	require.NoError(t, store.SetUserActive(demoID, false))

	status, _ := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "", map[string]string{
		"username": "demo",
		"password": "demo123",
	})

	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProducts_Public(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/products")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []domain.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, 5)
	assert.True(t, domain.ValidProductID(products[0].ID))
}

func TestCart_RequiresAuth(t *testing.T) {
	srv, _ := setupServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/cart", "", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.NotEmpty(t, body["error"])
}

func TestCart_WireShape(t *testing.T) {
	srv, store := setupServer(t)
	token := loginAs(t, srv, "demo", "demo123")
	productID := firstProductID(t, store)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/cart/add", token, map[string]any{
		"productId": productID,
		"quantity":  2,
	})
	require.Equal(t, http.StatusOK, status)

	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	item := items[0].(map[string]any)
	assert.Equal(t, float64(2), item["quantity"])
	product := item["product"].(map[string]any)
	assert.Equal(t, productID, product["_id"])
	assert.NotEmpty(t, product["name"])
	assert.NotNil(t, product["price"])
	assert.NotEmpty(t, product["imageFile"])
}

func TestCart_AddCoalescesSameProduct(t *testing.T) {
	srv, store := setupServer(t)
	token := loginAs(t, srv, "demo", "demo123")
	productID := firstProductID(t, store)

	doJSON(t, http.MethodPost, srv.URL+"/cart/add", token, map[string]any{"productId": productID, "quantity": 1})
	status, body := doJSON(t, http.MethodPost, srv.URL+"/cart/add", token, map[string]any{"productId": productID, "quantity": 2})
	require.Equal(t, http.StatusOK, status)

	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(3), items[0].(map[string]any)["quantity"])
}

func TestCart_UpdateAndRemove(t *testing.T) {
	srv, store := setupServer(t)
	token := loginAs(t, srv, "demo", "demo123")
	productID := firstProductID(t, store)

	doJSON(t, http.MethodPost, srv.URL+"/cart/add", token, map[string]any{"productId": productID, "quantity": 1})

	status, body := doJSON(t, http.MethodPut, srv.URL+"/cart/item/"+productID, token, map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, status)
	items := body["items"].([]any)
	assert.Equal(t, float64(5), items[0].(map[string]any)["quantity"])

	status, body = doJSON(t, http.MethodDelete, srv.URL+"/cart/item/"+productID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])
}

func TestCheckout_EmptyCart(t *testing.T) {
	srv, _ := setupServer(t)
	token := loginAs(t, srv, "demo", "demo123")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/orders/checkout", token, nil)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestCheckout_CreatesOrderAndEmptiesCart(t *testing.T) {
	srv, store := setupServer(t)
	token := loginAs(t, srv, "demo", "demo123")
	productID := firstProductID(t, store)

	doJSON(t, http.MethodPost, srv.URL+"/cart/add", token, map[string]any{"productId": productID, "quantity": 2})

	status, body := doJSON(t, http.MethodPost, srv.URL+"/orders/checkout", token, nil)
	require.Equal(t, http.StatusOK, status)
	orderID, _ := body["orderId"].(string)
	assert.NotEmpty(t, orderID)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/cart", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var orders []domain.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].ID)
	assert.Equal(t, domain.OrderStatusPending, orders[0].Status)
}

func TestAdminRoutes_ForbiddenForUserRole(t *testing.T) {
	srv, _ := setupServer(t)
	token := loginAs(t, srv, "demo", "demo123")

	for _, path := range []string{"/orders/all", "/users"} {
		status, _ := doJSON(t, http.MethodGet, srv.URL+path, token, nil)
		assert.Equal(t, http.StatusForbidden, status, path)
	}
}

func TestAdmin_UserManagement(t *testing.T) {
	srv, store := setupServer(t)
	admin := loginAs(t, srv, "admin", "admin123")

	var demoID string
	for _, u := range store.Users() {
		if u.Username == "demo" {
			demoID = u.ID
		}
	}

	status, _ := doJSON(t, http.MethodPut, srv.URL+"/users/"+demoID+"/role", admin, map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, http.MethodPut, srv.URL+"/users/"+demoID+"/active", admin, map[string]bool{"isActive": false})
	require.Equal(t, http.StatusOK, status)

	users := store.Users()
	for _, u := range users {
		if u.ID == demoID {
			assert.Equal(t, "admin", u.Role)
			assert.False(t, u.IsActive)
		}
	}
}

func TestAdmin_SetUserPassword_VerifiesAdminPassword(t *testing.T) {
	srv, store := setupServer(t)
	admin := loginAs(t, srv, "admin", "admin123")

	var demoID string
	for _, u := range store.Users() {
		if u.Username == "demo" {
			demoID = u.ID
		}
	}

	status, _ := doJSON(t, http.MethodPut, srv.URL+"/users/"+demoID+"/password", admin, map[string]string{
		"adminPassword": "wrong",
		"newPassword":   "newpass123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, http.MethodPut, srv.URL+"/users/"+demoID+"/password", admin, map[string]string{
		"adminPassword": "admin123",
		"newPassword":   "newpass123",
	})
	require.Equal(t, http.StatusOK, status)

	loginAs(t, srv, "demo", "newpass123")
}

func TestChangeMyPassword(t *testing.T) {
	srv, _ := setupServer(t)
	token := loginAs(t, srv, "demo", "demo123")

	status, _ := doJSON(t, http.MethodPut, srv.URL+"/auth/me/password", token, map[string]string{
		"currentPassword": "wrong",
		"newPassword":     "next-secret",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, http.MethodPut, srv.URL+"/auth/me/password", token, map[string]string{
		"currentPassword": "demo123",
		"newPassword":     "next-secret",
	})
	require.Equal(t, http.StatusOK, status)

	loginAs(t, srv, "demo", "next-secret")
}

func TestAdmin_ProductAndCategoryCRUD(t *testing.T) {
	srv, _ := setupServer(t)
	admin := loginAs(t, srv, "admin", "admin123")

	status, body := doJSON(t, http.MethodPost, srv.URL+"/products", admin, map[string]any{
		"name":  "Rose Water Toner",
		"price": 65,
	})
	require.Equal(t, http.StatusCreated, status)
	productID, _ := body["_id"].(string)
	require.True(t, domain.ValidProductID(productID))

	status, _ = doJSON(t, http.MethodPut, srv.URL+"/products/"+productID, admin, map[string]any{
		"name":  "Rose Water Toner",
		"price": 70,
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/products/"+productID, admin, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/categories", admin, map[string]string{"name": "Masks"})
	require.Equal(t, http.StatusCreated, status)
	categoryID, _ := body["_id"].(string)
	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/categories/"+categoryID, admin, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestAdmin_OrderStatus(t *testing.T) {
	srv, store := setupServer(t)
	admin := loginAs(t, srv, "admin", "admin123")
	demo := loginAs(t, srv, "demo", "demo123")
	productID := firstProductID(t, store)

	doJSON(t, http.MethodPost, srv.URL+"/cart/add", demo, map[string]any{"productId": productID, "quantity": 1})
	_, body := doJSON(t, http.MethodPost, srv.URL+"/orders/checkout", demo, nil)
	orderID := body["orderId"].(string)

	status, _ := doJSON(t, http.MethodPut, srv.URL+"/orders/"+orderID, admin,
		map[string]string{"status": domain.OrderStatusShipped})
	require.Equal(t, http.StatusOK, status)

	orders := store.AllOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusShipped, orders[0].Status)
}

func TestAllOrders_SurviveUserDeletion(t *testing.T) {
	srv, store := setupServer(t)
	admin := loginAs(t, srv, "admin", "admin123")
	demo := loginAs(t, srv, "demo", "demo123")
	productID := firstProductID(t, store)

	doJSON(t, http.MethodPost, srv.URL+"/cart/add", demo, map[string]any{"productId": productID, "quantity": 1})
	_, body := doJSON(t, http.MethodPost, srv.URL+"/orders/checkout", demo, nil)
	orderID := body["orderId"].(string)

	var demoID string
	for _, u := range store.Users() {
		if u.Username == "demo" {
			demoID = u.ID
		}
	}
	status, _ := doJSON(t, http.MethodDelete, srv.URL+"/users/"+demoID, admin, nil)
	require.Equal(t, http.StatusOK, status)

	// the order record outlives its account
	orders := store.AllOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].ID)
}

func TestDeletedProduct_DroppedFromCart(t *testing.T) {
	srv, store := setupServer(t)
	token := loginAs(t, srv, "demo", "demo123")
	productID := firstProductID(t, store)

	doJSON(t, http.MethodPost, srv.URL+"/cart/add", token, map[string]any{"productId": productID, "quantity": 1})
	require.NoError(t, store.DeleteProduct(productID))

	status, body := doJSON(t, http.MethodGet, srv.URL+"/cart", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["items"])
}

func TestStore_ObjectIDFormat(t *testing.T) {
	for i := 0; i < 10; i++ {
		id := newObjectID()
		assert.True(t, domain.ValidProductID(id), fmt.Sprintf("id %q", id))
	}
}
