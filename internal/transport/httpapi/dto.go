package httpapi

import (
	"math"
	"time"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/service/crm"
)

// Денежные суммы на проводе — десятичные числа в основных единицах валюты.
// Внутри всё хранится в минорных единицах; конвертация только здесь.

func minorToAmount(minor int64) float64 {
	return float64(minor) / 100
}

func amountToMinor(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type apiResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Data    any      `json:"data,omitempty"`
}

type customerPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type productPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderPayload struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customerId"`
	ProductIDs  []string  `json:"productIds"`
	TotalAmount float64   `json:"totalAmount"`
	OrderDate   time.Time `json:"orderDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r createCustomerRequest) toInput() domain.CustomerInput {
	return domain.CustomerInput{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

type bulkCreateCustomersRequest struct {
	Customers []createCustomerRequest `json:"customers"`
	// Policy: "best-effort" (по умолчанию) или "fail-fast".
	Policy string `json:"policy"`
}

type createProductRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock *int    `json:"stock"`
}

func (r createProductRequest) toInput() domain.ProductInput {
	return domain.ProductInput{Name: r.Name, PriceMinor: amountToMinor(r.Price), Stock: r.Stock}
}

type createOrderRequest struct {
	CustomerID string     `json:"customerId"`
	ProductIDs []string   `json:"productIds"`
	OrderDate  *time.Time `json:"orderDate"`
}

func (r createOrderRequest) toInput() domain.OrderInput {
	return domain.OrderInput{CustomerID: r.CustomerID, ProductIDs: r.ProductIDs, OrderDate: r.OrderDate}
}

type bulkItemPayload struct {
	Success  bool             `json:"success"`
	Errors   []string         `json:"errors,omitempty"`
	Email    string           `json:"email"`
	Customer *customerPayload `json:"customer,omitempty"`
}

type bulkPayload struct {
	Total        int               `json:"total"`
	SuccessCount int               `json:"successCount"`
	ErrorCount   int               `json:"errorCount"`
	Items        []bulkItemPayload `json:"items"`
}

func toCustomerPayload(customer domain.Customer) customerPayload {
	return customerPayload{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		CreatedAt: customer.CreatedAt,
	}
}

func toProductPayload(product domain.Product) productPayload {
	return productPayload{
		ID:        product.ID,
		Name:      product.Name,
		Price:     minorToAmount(product.PriceMinor),
		Stock:     product.Stock,
		CreatedAt: product.CreatedAt,
	}
}

func toOrderPayload(order domain.Order) orderPayload {
	return orderPayload{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		ProductIDs:  order.ProductIDs,
		TotalAmount: minorToAmount(order.TotalMinor),
		OrderDate:   order.OrderDate,
		CreatedAt:   order.CreatedAt,
	}
}

func toCustomerPayloads(customers []domain.Customer) []customerPayload {
	result := make([]customerPayload, 0, len(customers))
	for _, customer := range customers {
		result = append(result, toCustomerPayload(customer))
	}
	return result
}

func toProductPayloads(products []domain.Product) []productPayload {
	result := make([]productPayload, 0, len(products))
	for _, product := range products {
		result = append(result, toProductPayload(product))
	}
	return result
}

func toOrderPayloads(orders []domain.Order) []orderPayload {
	result := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		result = append(result, toOrderPayload(order))
	}
	return result
}

func toBulkPayload(result crm.BulkResult) bulkPayload {
	items := make([]bulkItemPayload, 0, len(result.Items))
	for _, item := range result.Items {
		payload := bulkItemPayload{
			Success: item.Success,
			Errors:  item.Errors,
			Email:   item.Input.Email,
		}
		if item.Customer != nil {
			customer := toCustomerPayload(*item.Customer)
			payload.Customer = &customer
		}
		items = append(items, payload)
	}
	return bulkPayload{
		Total:        result.Total,
		SuccessCount: result.SuccessCount,
		ErrorCount:   result.ErrorCount,
		Items:        items,
	}
}
