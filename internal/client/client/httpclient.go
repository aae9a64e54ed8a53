package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/dmitrijs2005/pennywise/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RequestIDHeaderName = "X-Request-ID"

	maxErrorBody = 64 << 10
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient builds a gateway rooted at baseURL, e.g. "http://127.0.0.1:8000".
func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}

type budgetRequest struct {
	Amount json.Number `json:"amount"`
}

type expenseRequest struct {
	ItemName string      `json:"item_name"`
	Quantity string      `json:"quantity,omitempty"`
	Price    json.Number `json:"price"`
}

type shoppingItemRequest struct {
	ItemName string `json:"item_name"`
	Quantity string `json:"quantity,omitempty"`
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", false, credentialsRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &TransportError{Op: "POST /auth/login", Err: errors.New("empty access token")}
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) Signup(ctx context.Context, user models.NewUser) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/auth/signup", false, user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, username, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", false, resetPasswordRequest{Username: username, NewPassword: newPassword}, nil)
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, http.MethodGet, "/auth/me", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBudget returns a RejectedError matching ErrNotFound when no budget is set.
func (c *HTTPClient) GetBudget(ctx context.Context) (*models.Budget, error) {
	var out models.Budget
	if err := c.do(ctx, http.MethodGet, "/budget/", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PutBudget(ctx context.Context, amount decimal.Decimal) (*models.Budget, error) {
	var out models.Budget
	if err := c.do(ctx, http.MethodPut, "/budget/", true, budgetRequest{Amount: json.Number(amount.String())}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CheckBudgetThreshold(ctx context.Context) (*models.BudgetThreshold, error) {
	var out models.BudgetThreshold
	if err := c.do(ctx, http.MethodGet, "/budget/check-threshold", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListExpenses preserves the server's newest-first order.
func (c *HTTPClient) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	out := []models.Expense{}
	if err := c.do(ctx, http.MethodGet, "/expenses/", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetExpensesTotal(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	if err := c.do(ctx, http.MethodGet, "/expenses/total", true, nil, &total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (c *HTTPClient) PostExpense(ctx context.Context, itemName, quantity string, price decimal.Decimal) (*models.Expense, error) {
	req := expenseRequest{ItemName: itemName, Quantity: quantity, Price: json.Number(price.String())}
	var out models.Expense
	if err := c.do(ctx, http.MethodPost, "/expenses/", true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteExpense(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+strconv.FormatInt(id, 10), true, nil, nil)
}

func (c *HTTPClient) ListShoppingItems(ctx context.Context) ([]models.ShoppingItem, error) {
	out := []models.ShoppingItem{}
	if err := c.do(ctx, http.MethodGet, "/shopping-list/", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) PostShoppingItem(ctx context.Context, itemName, quantity string) (*models.ShoppingItem, error) {
	var out models.ShoppingItem
	if err := c.do(ctx, http.MethodPost, "/shopping-list/", true, shoppingItemRequest{ItemName: itemName, Quantity: quantity}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) PutShoppingItem(ctx context.Context, id int64, itemName, quantity string) (*models.ShoppingItem, error) {
	var out models.ShoppingItem
	path := "/shopping-list/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, true, shoppingItemRequest{ItemName: itemName, Quantity: quantity}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteShoppingItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/shopping-list/"+strconv.FormatInt(id, 10), true, nil, nil)
}

// do issues one request. It never retries.
func (c *HTTPClient) do(ctx context.Context, method, path string, auth bool, body any, out any) error {
	op := method + " " + path

	var token string
	if auth {
		t, ok := c.tokens.Token()
		if !ok {
			c.log.Debug(ctx, "request skipped, no token", "op", op)
			return ErrUnauthenticated
		}
		token = t
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeaderName, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "op", op, "request_id", requestID, "error", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "op", op, "status", resp.StatusCode,
		"duration", time.Since(started), "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rejected := &RejectedError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
		c.log.Warn(ctx, "request rejected", "op", op, "status", resp.StatusCode,
			"message", rejected.Message, "request_id", requestID)
		return rejected
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Warn(ctx, "response unparseable", "op", op, "request_id", requestID, "error", err)
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage extracts FastAPI's "detail", which is either a string or a
// list of {"msg": ...} validation entries.
func errorMessage(resp *http.Response) string {
	fallback := http.StatusText(resp.StatusCode)

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(b) == 0 {
		return fallback
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil && detail != "" {
		return detail
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return fallback
}
