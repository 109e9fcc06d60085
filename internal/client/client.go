// Package client provides the HTTP JSON client for the retail assistant
// service. All remote interaction goes through here; the rest of the
// program never sees wire formats.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthorized is returned on any 401 response. The held token is no
// longer valid; callers must discard it and re-authenticate rather than
// retry.
var ErrUnauthorized = errors.New("unauthorized: session token rejected")

// APIError is a non-2xx response with an optional structured detail message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server error: %d", e.Status)
}

// Client talks to the assistant service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for the given base URL.
// If baseURL is empty, uses the SHOPCHAT_API_URL env var or defaults to the
// local service. A non-positive timeout falls back to 60s; the slowest call
// is answer synthesis on the server.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("SHOPCHAT_API_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// SetToken attaches a bearer token to every subsequent request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// do sends one JSON request and decodes the response into out (when out is
// non-nil and the body is non-empty). A 401 maps to ErrUnauthorized; any
// other non-2xx maps to *APIError carrying the service's detail message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	reqID := uuid.New().String()
	c.logger.Debug("api request", "id", reqID, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "id", reqID, "error", err)
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("api response", "id", reqID, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(respBody, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// =============================================================================
// CHAT
// =============================================================================

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// Chat sends one user turn and returns the raw assistant answer, which may
// still carry an embedded order-form directive.
func (c *Client) Chat(ctx context.Context, sessionID, question string) (string, error) {
	var resp chatResponse
	err := c.do(ctx, http.MethodPost, "/v1/chat", chatRequest{
		SessionID: sessionID,
		Question:  question,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Answer, nil
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

// ClearHistory asks the service to drop conversational memory for the
// session. The response body is ignored.
func (c *Client) ClearHistory(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/v1/chat/clear", clearRequest{SessionID: sessionID}, nil)
}

// =============================================================================
// PRODUCTS
// =============================================================================

// Product is one sellable catalog entry.
type Product struct {
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	CategoryName string  `json:"category_name"`
}

type productListResponse struct {
	Products []Product `json:"products"`
}

// ProductsForOrderForm fetches the sellable catalog used to populate order
// form selections.
func (c *Client) ProductsForOrderForm(ctx context.Context) ([]Product, error) {
	var resp productListResponse
	if err := c.do(ctx, http.MethodGet, "/db/graph/products-for-order-form", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// ProductDetail is the single-product view returned by search.
type ProductDetail struct {
	SKU          string  `json:"sku"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	CategoryName string  `json:"category_name"`
	Description  string  `json:"description"`
}

// SearchProduct looks a product up by display name. A 404 is an empty
// result, not an error.
func (c *Client) SearchProduct(ctx context.Context, name string) (*ProductDetail, error) {
	var detail ProductDetail
	path := "/products/search?query=" + url.QueryEscape(name)
	err := c.do(ctx, http.MethodGet, path, nil, &detail)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &detail, nil
}

// =============================================================================
// ORDERS
// =============================================================================

// OrderItem identifies a product by display name, not an internal id — a
// deliberate simplification carried over from the original system.
type OrderItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// OrderRequest is the order-creation payload. Customer fields are expected
// pre-trimmed.
type OrderRequest struct {
	Items           []OrderItem `json:"items"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	CustomerAddress string      `json:"customer_address"`
	Notes           string      `json:"notes"`
}

// SubmitOrder issues a single order-creation request. The success body is
// arbitrary and discarded.
func (c *Client) SubmitOrder(ctx context.Context, order OrderRequest) error {
	return c.do(ctx, http.MethodPost, "/email/order-request", order, nil)
}

// =============================================================================
// AUTH
// =============================================================================

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a bearer token. The endpoint speaks
// OAuth2 password flow, so this is the one form-encoded request in the API.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return "", ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return "", apiErr
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return tok.AccessToken, nil
}
