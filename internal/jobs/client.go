package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultRequestTimeout = 10 * time.Second

// Client — HTTP-клиент CRM API для периодических задач. Задачи ходят к API
// по сети, как внешние вызыватели, а не напрямую к сервисам.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Entry
}

// ClientOption настраивает Client.
type ClientOption func(*Client)

// WithHTTPClient подменяет транспорт (для тестов и нестандартных таймаутов).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClientLogger задаёт logger клиента.
func WithClientLogger(logger *log.Entry) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient создаёт клиента CRM API с базовым URL вида http://host:port.
func NewClient(baseURL string, options ...ClientOption) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		logger: log.WithField("component", "crm-api-client"),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// RestockedProduct — товар, пополненный запуском updateLowStockProducts.
type RestockedProduct struct {
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// OrderReminder — заказ из недельного окна вместе с email клиента.
type OrderReminder struct {
	OrderID string
	Email   string
}

// ReportTotals — сводные показатели CRM для отчёта.
type ReportTotals struct {
	Customers int
	Orders    int
	Revenue   float64
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

// Hello проверяет доступность API.
func (c *Client) Hello(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodGet, "/api/hello", nil)
	return err
}

// UpdateLowStock вызывает мутацию пополнения низких остатков и возвращает
// обновлённые товары.
func (c *Client) UpdateLowStock(ctx context.Context) ([]RestockedProduct, error) {
	data, err := c.call(ctx, http.MethodPost, "/api/updateLowStockProducts", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		UpdatedProducts []RestockedProduct `json:"updatedProducts"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode restock payload: %w", err)
	}

	return payload.UpdatedProducts, nil
}

// RecentOrders возвращает заказы за отчётное окно вместе с email клиентов.
func (c *Client) RecentOrders(ctx context.Context) ([]OrderReminder, error) {
	orders, err := c.fetchOrders(ctx, "/api/ordersLast7days")
	if err != nil {
		return nil, err
	}

	emails, err := c.customerEmails(ctx)
	if err != nil {
		return nil, err
	}

	reminders := make([]OrderReminder, 0, len(orders))
	for _, order := range orders {
		reminders = append(reminders, OrderReminder{
			OrderID: order.ID,
			Email:   emails[order.CustomerID],
		})
	}

	return reminders, nil
}

// ReportTotals собирает сводку по клиентам, заказам и выручке.
func (c *Client) ReportTotals(ctx context.Context) (ReportTotals, error) {
	data, err := c.call(ctx, http.MethodGet, "/api/allCustomers", nil)
	if err != nil {
		return ReportTotals{}, err
	}
	var customersPayload struct {
		Customers []struct {
			ID string `json:"id"`
		} `json:"customers"`
	}
	if err := json.Unmarshal(data, &customersPayload); err != nil {
		return ReportTotals{}, fmt.Errorf("decode customers payload: %w", err)
	}

	orders, err := c.fetchOrders(ctx, "/api/allOrders")
	if err != nil {
		return ReportTotals{}, err
	}

	totals := ReportTotals{
		Customers: len(customersPayload.Customers),
		Orders:    len(orders),
	}
	for _, order := range orders {
		totals.Revenue += order.TotalAmount
	}

	return totals, nil
}

type orderRecord struct {
	ID          string  `json:"id"`
	CustomerID  string  `json:"customerId"`
	TotalAmount float64 `json:"totalAmount"`
}

func (c *Client) fetchOrders(ctx context.Context, path string) ([]orderRecord, error) {
	data, err := c.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Orders []orderRecord `json:"orders"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode orders payload: %w", err)
	}

	return payload.Orders, nil
}

func (c *Client) customerEmails(ctx context.Context) (map[string]string, error) {
	data, err := c.call(ctx, http.MethodGet, "/api/allCustomers", nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Customers []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"customers"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode customers payload: %w", err)
	}

	emails := make(map[string]string, len(payload.Customers))
	for _, customer := range payload.Customers {
		emails[customer.ID] = customer.Email
	}

	return emails, nil
}

func (c *Client) call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode response %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !envelope.Success {
		c.logger.WithFields(log.Fields{
			"path":   path,
			"status": resp.StatusCode,
			"errors": envelope.Errors,
		}).Warn("api call failed")
		return nil, fmt.Errorf("api %s returned status %d: %s", path, resp.StatusCode, envelope.Message)
	}

	return envelope.Data, nil
}
