package crm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/metrics"
)

const (
	mutationCreateCustomer      = "createCustomer"
	mutationBulkCreateCustomers = "bulkCreateCustomers"
	mutationCreateProduct       = "createProduct"
	mutationCreateOrder         = "createOrder"
	mutationUpdateLowStock      = "updateLowStockProducts"

	eventCustomerCreated  = "customer.created"
	eventProductCreated   = "product.created"
	eventProductRestocked = "product.restocked"
	eventOrderCreated     = "order.created"
)

// Mutations реализует мутации CRM поверх доменных репозиториев.
// Сервис не хранит состояния между вызовами: каждый вызов самодостаточен.
type Mutations struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.MutationMetrics
}

// NewMutations конструирует сервис мутаций с зависимостями.
func NewMutations(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Mutations {
	if logger == nil {
		logger = log.New().WithField("component", "crm-mutations")
	}
	return &Mutations{
		customers: customers,
		products:  products,
		orders:    orders,
		outbox:    outbox,
		logger:    logger,
		metrics:   metrics.NewMutationMetrics(),
	}
}

// NewMutationsWithoutMetrics конструирует сервис без метрик (для тестов).
func NewMutationsWithoutMetrics(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) *Mutations {
	m := NewMutations(customers, products, orders, outbox, logger)
	m.metrics = nil
	return m
}

// CreateCustomer проверяет вход и сохраняет клиента с нормализованным
// email. При любой ошибке валидации запись не выполняется, а ответ несёт
// полный список нарушений.
func (m *Mutations) CreateCustomer(in domain.CustomerInput) CustomerResult {
	start := time.Now()

	result := m.createCustomer(in)

	m.recordMutation(mutationCreateCustomer, result.Success, time.Since(start))
	return result
}

func (m *Mutations) createCustomer(in domain.CustomerInput) CustomerResult {
	errs, err := m.validateCustomer(in, nil)
	if err != nil {
		return CustomerResult{Success: false, Message: StoreFailureMessage, Errors: []string{err.Error()}}
	}
	if len(errs) > 0 {
		return CustomerResult{
			Success: false,
			Message: validationFailureMessage(errs),
			Errors:  domain.ErrorMessages(errs),
		}
	}

	customer := domain.NewCustomer(uuid.NewString(), in, time.Now().UTC())
	if err := m.customers.Create(customer); err != nil {
		// Гонка за email между валидацией и записью отражается как
		// обычная ошибка валидации.
		if domain.IsConflict(err) {
			return CustomerResult{
				Success: false,
				Message: validationFailureMessage([]error{err}),
				Errors:  []string{err.Error()},
			}
		}
		m.logger.WithError(err).Warn("failed to persist customer")
		return CustomerResult{Success: false, Message: StoreFailureMessage, Errors: []string{fmt.Sprintf("create customer: %v", err)}}
	}

	m.enqueueEvent("customer", customer.ID, eventCustomerCreated, customerEventPayload(customer))
	m.logger.WithField("customer_id", customer.ID).Info("customer created")

	return CustomerResult{
		Success:  true,
		Message:  "Customer created successfully.",
		Customer: &customer,
	}
}

// CreateProduct проверяет вход и сохраняет товар. Остаток по умолчанию 0.
func (m *Mutations) CreateProduct(in domain.ProductInput) ProductResult {
	start := time.Now()

	result := m.createProduct(in)

	m.recordMutation(mutationCreateProduct, result.Success, time.Since(start))
	return result
}

func (m *Mutations) createProduct(in domain.ProductInput) ProductResult {
	if errs := in.Validate(); len(errs) > 0 {
		return ProductResult{
			Success: false,
			Message: validationFailureMessage(errs),
			Errors:  domain.ErrorMessages(errs),
		}
	}

	product := domain.NewProduct(uuid.NewString(), in, time.Now().UTC())
	if err := m.products.Create(product); err != nil {
		m.logger.WithError(err).Warn("failed to persist product")
		return ProductResult{Success: false, Message: StoreFailureMessage, Errors: []string{fmt.Sprintf("create product: %v", err)}}
	}

	m.enqueueEvent("product", product.ID, eventProductCreated, productEventPayload(product))
	m.logger.WithField("product_id", product.ID).Info("product created")

	return ProductResult{
		Success: true,
		Message: "Product created successfully.",
		Product: &product,
	}
}

// CreateOrder проверяет ссылки заказа, считает сумму по текущим ценам и
// сохраняет заказ вместе со связями как единое целое. Дата заказа по
// умолчанию — момент создания; сумма фиксируется и не пересчитывается.
func (m *Mutations) CreateOrder(in domain.OrderInput) OrderResult {
	start := time.Now()

	result := m.createOrder(in)

	m.recordMutation(mutationCreateOrder, result.Success, time.Since(start))
	return result
}

func (m *Mutations) createOrder(in domain.OrderInput) OrderResult {
	errs, found, err := m.validateOrder(in)
	if err != nil {
		return OrderResult{Success: false, Message: StoreFailureMessage, Errors: []string{err.Error()}}
	}
	if len(errs) > 0 {
		return OrderResult{
			Success: false,
			Message: validationFailureMessage(errs),
			Errors:  domain.ErrorMessages(errs),
		}
	}

	now := time.Now().UTC()
	orderDate := now
	if in.OrderDate != nil {
		orderDate = in.OrderDate.UTC()
	}

	// Дубликаты во входе не учитываются дважды: связь — множество.
	ids := domain.DedupeProductIDs(in.ProductIDs)
	var total int64
	for _, id := range ids {
		total += found[id].PriceMinor
	}

	order := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: in.CustomerID,
		ProductIDs: ids,
		TotalMinor: total,
		OrderDate:  orderDate,
		CreatedAt:  now,
	}

	if err := m.orders.Create(order); err != nil {
		m.logger.WithError(err).Warn("failed to persist order")
		return OrderResult{Success: false, Message: StoreFailureMessage, Errors: []string{fmt.Sprintf("create order: %v", err)}}
	}

	m.enqueueEvent("order", order.ID, eventOrderCreated, orderEventPayload(order))
	m.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"total_minor": order.TotalMinor,
	}).Info("order created")

	return OrderResult{
		Success: true,
		Message: "Order created successfully.",
		Order:   &order,
	}
}

// UpdateLowStockProducts добавляет RestockAmount единиц каждому товару с
// остатком ниже порога. Когда таких товаров нет, повторный запуск ничего
// не меняет.
func (m *Mutations) UpdateLowStockProducts() RestockResult {
	start := time.Now()

	result := m.updateLowStock()

	m.recordMutation(mutationUpdateLowStock, result.Success, time.Since(start))
	return result
}

func (m *Mutations) updateLowStock() RestockResult {
	updated, err := m.products.RestockBelow(domain.LowStockThreshold, domain.RestockAmount)
	if err != nil {
		m.logger.WithError(err).Warn("failed to restock low-stock products")
		return RestockResult{Success: false, Message: StoreFailureMessage, Errors: []string{fmt.Sprintf("restock products: %v", err)}}
	}

	if m.metrics != nil {
		remaining := 0
		if low, err := m.products.List(domain.ProductFilter{LowStock: true}); err == nil {
			remaining = len(low)
		}
		m.metrics.RecordRestock(len(updated), remaining)
	}

	if len(updated) == 0 {
		return RestockResult{Success: true, Message: "No low-stock products to update."}
	}

	ids := make([]string, 0, len(updated))
	for _, product := range updated {
		ids = append(ids, product.ID)
	}
	m.enqueueEvent("product", strings.Join(ids, ","), eventProductRestocked, restockEventPayload(updated))
	m.logger.WithField("restocked", len(updated)).Info("low-stock products updated")

	return RestockResult{
		Success:         true,
		Message:         "Low stock products updated successfully.",
		UpdatedProducts: updated,
	}
}

// enqueueEvent кладёт событие в outbox. Ошибка постановки не считается
// ошибкой мутации: запись уже зафиксирована, событие будет потеряно, о чём
// остаётся запись в логе.
func (m *Mutations) enqueueEvent(aggregateType, aggregateID, eventType string, payload []byte) {
	if m.outbox == nil {
		return
	}
	_, err := m.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
	})
	if err != nil {
		m.logger.WithError(err).WithField("event_type", eventType).Warn("failed to enqueue outbox event")
		return
	}
	if m.metrics != nil {
		m.metrics.RecordOutboxEvent()
	}
}

func (m *Mutations) recordMutation(mutation string, success bool, duration time.Duration) {
	if m.metrics != nil {
		m.metrics.RecordMutation(mutation, success, duration)
	}
}

// StoreFailureMessage — сообщение ответа при сбое хранилища. Транспорт
// различает по нему сбой хранилища и ошибку валидации.
const StoreFailureMessage = "Internal storage error."

// validationFailureMessage склеивает все нарушения в одно сообщение ответа.
func validationFailureMessage(errs []error) string {
	return "Validation failed: " + strings.Join(domain.ErrorMessages(errs), "; ")
}

func customerEventPayload(customer domain.Customer) []byte {
	payload, _ := json.Marshal(map[string]any{
		"id":         customer.ID,
		"name":       customer.Name,
		"email":      customer.Email,
		"created_at": customer.CreatedAt,
	})
	return payload
}

func productEventPayload(product domain.Product) []byte {
	payload, _ := json.Marshal(map[string]any{
		"id":          product.ID,
		"name":        product.Name,
		"price_minor": product.PriceMinor,
		"stock":       product.Stock,
	})
	return payload
}

func orderEventPayload(order domain.Order) []byte {
	payload, _ := json.Marshal(map[string]any{
		"id":          order.ID,
		"customer_id": order.CustomerID,
		"product_ids": order.ProductIDs,
		"total_minor": order.TotalMinor,
		"order_date":  order.OrderDate,
	})
	return payload
}

func restockEventPayload(products []domain.Product) []byte {
	items := make([]map[string]any, 0, len(products))
	for _, product := range products {
		items = append(items, map[string]any{
			"id":    product.ID,
			"name":  product.Name,
			"stock": product.Stock,
		})
	}
	payload, _ := json.Marshal(map[string]any{"updated_products": items})
	return payload
}
