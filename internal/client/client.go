// Package client is a typed HTTP client for the catalog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"crudstore.app/internal/auth"
	"crudstore.app/internal/catalog"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps the response back onto the service sentinels so callers can
// use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "UNAUTHORIZED":
		return auth.ErrBadCredentials
	case "UNAUTHENTICATED":
		return auth.ErrUnauthenticated
	case "FORBIDDEN":
		return auth.ErrForbidden
	case "UNKNOWN_ROLE":
		return auth.ErrUnknownRole
	case "VALIDATION_ERROR":
		return auth.ErrInvalidInput
	case "CONFLICT":
		return auth.ErrConflict
	case "RESOURCE_NOT_FOUND":
		return catalog.ErrNotFound
	default:
		return nil
	}
}

// Client talks to one API base URL. It remembers the last issued token.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken starts the client with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token in use.
func (c *Client) Token() string { return c.token }

// SignUp opens an account and keeps its token.
func (c *Client) SignUp(ctx context.Context, username, password string, roles ...string) (auth.AuthResponse, error) {
	var out auth.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/sign-up", auth.SignUpRequest{
		Username:    username,
		Password:    password,
		RoleRequest: auth.RoleRequest{RoleListName: roles},
	}, &out)
	if err == nil {
		c.token = out.JWT
	}
	return out, err
}

// LogIn authenticates and keeps the token.
func (c *Client) LogIn(ctx context.Context, username, password string) (auth.AuthResponse, error) {
	var out auth.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/log-in", auth.LoginRequest{Username: username, Password: password}, &out)
	if err == nil {
		c.token = out.JWT
	}
	return out, err
}

func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	return out, c.do(ctx, http.MethodGet, "/api/categorias", nil, &out)
}

func (c *Client) GetCategory(ctx context.Context, id int64) (catalog.Category, error) {
	var out catalog.Category
	return out, c.do(ctx, http.MethodGet, "/api/categorias/"+strconv.FormatInt(id, 10), nil, &out)
}

func (c *Client) CreateCategory(ctx context.Context, in catalog.CategoryInput) (catalog.Category, error) {
	var out catalog.Category
	return out, c.do(ctx, http.MethodPost, "/api/categorias/create", in, &out)
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in catalog.CategoryInput) (catalog.Category, error) {
	var out catalog.Category
	return out, c.do(ctx, http.MethodPut, "/api/categorias/"+strconv.FormatInt(id, 10), in, &out)
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/categorias/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	return out, c.do(ctx, http.MethodGet, "/api/productos", nil, &out)
}

func (c *Client) ListProductsByCategory(ctx context.Context, categoryID int64) ([]catalog.Product, error) {
	var out []catalog.Product
	return out, c.do(ctx, http.MethodGet, "/api/productos/categoria/"+strconv.FormatInt(categoryID, 10), nil, &out)
}

func (c *Client) CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
	var out catalog.Product
	return out, c.do(ctx, http.MethodPost, "/api/productos", in, &out)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/productos/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Code == "" {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// CheckHealth asks the gRPC health service at target for the overall status.
func CheckHealth(ctx context.Context, target string, opts ...grpc.DialOption) (healthpb.HealthCheckResponse_ServingStatus, error) {
	if len(opts) == 0 {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	defer conn.Close()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
