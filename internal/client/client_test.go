package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 0, nil)
}

func TestChat(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"answer": "We have three UPS models in stock."})
	})
	c.SetToken("tok123")

	answer, err := c.Chat(context.Background(), "session_1700000000000", "what UPS models do you have?")
	require.NoError(t, err)

	assert.Equal(t, "We have three UPS models in stock.", answer)
	assert.Equal(t, "/v1/chat", gotPath)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "session_1700000000000", gotBody["session_id"])
	assert.Equal(t, "what UPS models do you have?", gotBody["question"])
}

func TestChat_NoTokenNoAuthHeader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"answer": "ok"})
	})

	_, err := c.Chat(context.Background(), "session_1", "hi")
	require.NoError(t, err)
}

func TestChat_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Chat(context.Background(), "session_1", "hi")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestChat_ServerErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "graph store unavailable"})
	})

	_, err := c.Chat(context.Background(), "session_1", "hi")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "graph store unavailable", apiErr.Error())
}

func TestChat_ServerErrorWithoutDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Chat(context.Background(), "session_1", "hi")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "server error: 502", apiErr.Error())
}

func TestClearHistory(t *testing.T) {
	var gotPath string
	var gotBody map[string]string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.ClearHistory(context.Background(), "session_42"))
	assert.Equal(t, "/v1/chat/clear", gotPath)
	assert.Equal(t, "session_42", gotBody["session_id"])
}

func TestProductsForOrderForm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/db/graph/products-for-order-form", r.URL.Path)
		io.WriteString(w, `{"products":[
			{"sku":"UPS-GM4","name":"eMark GM4 Mini UPS","price":10500,"category_name":"Power"},
			{"sku":"RTR-AX2","name":"AX2 Router","price":15990,"category_name":"Networking"}
		]}`)
	})

	products, err := c.ProductsForOrderForm(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "eMark GM4 Mini UPS", products[0].Name)
	assert.Equal(t, 10500.0, products[0].Price)
	assert.Equal(t, "Networking", products[1].CategoryName)
}

func TestSearchProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/search", r.URL.Path)
		assert.Equal(t, "mini ups", r.URL.Query().Get("query"))
		io.WriteString(w, `{"sku":"UPS-GM4","name":"eMark GM4 Mini UPS","price":10500,"category_name":"Power","description":"Keeps a router alive for hours."}`)
	})

	detail, err := c.SearchProduct(context.Background(), "mini ups")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "UPS-GM4", detail.SKU)
	assert.Equal(t, "Keeps a router alive for hours.", detail.Description)
}

func TestSearchProduct_NotFoundIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "not found"})
	})

	detail, err := c.SearchProduct(context.Background(), "no such thing")
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestSubmitOrder(t *testing.T) {
	var gotPath string
	var got OrderRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	err := c.SubmitOrder(context.Background(), OrderRequest{
		Items: []OrderItem{
			{ProductName: "eMark GM4 Mini UPS", Quantity: 2},
		},
		CustomerName:  "J. Perera",
		CustomerEmail: "j.perera@example.com",
		CustomerPhone: "0712345678",
	})
	require.NoError(t, err)

	assert.Equal(t, "/email/order-request", gotPath)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "eMark GM4 Mini UPS", got.Items[0].ProductName)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, "J. Perera", got.CustomerName)
}

func TestSubmitOrder_DetailSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"detail": "unknown product: Other"})
	})

	err := c.SubmitOrder(context.Background(), OrderRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "unknown product: Other", apiErr.Detail)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "alice", r.PostForm.Get("username"))
		assert.Equal(t, "s3cret", r.PostForm.Get("password"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok456", "token_type": "bearer"})
	})

	token, err := c.Login(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "tok456", token)
}

func TestLogin_BadCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "incorrect username or password"})
	})

	_, err := c.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:8000/", 0, nil)
	assert.Equal(t, "http://localhost:8000", c.baseURL)
}

func TestNew_Timeout(t *testing.T) {
	// The caller's timeout ends up on the HTTP client; the configuration
	// layer is the only place that reads it from the environment.
	c := New("http://localhost:8000", 90*time.Second, nil)
	assert.Equal(t, 90*time.Second, c.httpClient.Timeout)

	c = New("http://localhost:8000", 0, nil)
	assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
}
