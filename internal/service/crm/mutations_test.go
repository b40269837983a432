package crm_test

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/service/crm"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

type fixture struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	mutations *crm.Mutations
	queries   *crm.Queries
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	entry := logger.WithField("component", "test")

	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(customers, products)
	outbox := memory.NewOutboxRepository()

	return &fixture{
		customers: customers,
		products:  products,
		orders:    orders,
		outbox:    outbox,
		mutations: crm.NewMutationsWithoutMetrics(customers, products, orders, outbox, entry),
		queries:   crm.NewQueries(customers, products, orders, entry),
	}
}

func (f *fixture) pendingEvents(t *testing.T) []domain.OutboxMessage {
	t.Helper()
	events, err := f.outbox.PullPending(100)
	require.NoError(t, err)
	return events
}

func TestCreateCustomer_NormalizesEmail(t *testing.T) {
	f := newFixture(t)

	result := f.mutations.CreateCustomer(domain.CustomerInput{
		Name:  "  Alice  ",
		Email: " Alice@Example.COM ",
		Phone: "+15551234",
	})

	require.True(t, result.Success)
	require.Equal(t, "Customer created successfully.", result.Message)
	require.NotNil(t, result.Customer)
	require.Equal(t, "alice@example.com", result.Customer.Email)
	require.Equal(t, "Alice", result.Customer.Name)
	require.False(t, result.Customer.CreatedAt.IsZero())

	events := f.pendingEvents(t)
	require.Len(t, events, 1)
	require.Equal(t, "customer.created", events[0].EventType)
}

func TestCreateCustomer_DuplicateEmailCaseInsensitive(t *testing.T) {
	f := newFixture(t)

	first := f.mutations.CreateCustomer(domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.True(t, first.Success)

	second := f.mutations.CreateCustomer(domain.CustomerInput{Name: "Imposter", Email: "ALICE@example.com"})
	require.False(t, second.Success)
	require.Contains(t, second.Errors, "email exists")
	require.Nil(t, second.Customer)

	// Хранилище не изменилось: по-прежнему один клиент.
	all, err := f.customers.List(domain.CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCreateCustomer_CollectsAllViolations(t *testing.T) {
	f := newFixture(t)

	result := f.mutations.CreateCustomer(domain.CustomerInput{Name: " ", Email: "broken", Phone: "123"})

	require.False(t, result.Success)
	require.Len(t, result.Errors, 3)
	require.Contains(t, result.Message, "name is required")
	require.Contains(t, result.Message, "invalid email format")
	require.Contains(t, result.Message, "invalid phone")
	require.Empty(t, f.pendingEvents(t))
}

func TestCreateProduct_Validation(t *testing.T) {
	f := newFixture(t)

	bad := f.mutations.CreateProduct(domain.ProductInput{Name: "Widget", PriceMinor: 0})
	require.False(t, bad.Success)
	require.Contains(t, bad.Errors, "price must be greater than zero")

	all, err := f.products.List(domain.ProductFilter{})
	require.NoError(t, err)
	require.Empty(t, all, "rejected product must not be persisted")

	ok := f.mutations.CreateProduct(domain.ProductInput{Name: "Widget", PriceMinor: 999})
	require.True(t, ok.Success)
	require.NotNil(t, ok.Product)
	require.Equal(t, 0, ok.Product.Stock, "stock defaults to zero when omitted")
}

func TestCreateOrder_ComputesFrozenTotal(t *testing.T) {
	f := newFixture(t)

	customer := f.mutations.CreateCustomer(domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.True(t, customer.Success)
	p1 := f.mutations.CreateProduct(domain.ProductInput{Name: "Coffee", PriceMinor: 1000})
	require.True(t, p1.Success)
	p2 := f.mutations.CreateProduct(domain.ProductInput{Name: "Tea", PriceMinor: 2500})
	require.True(t, p2.Success)

	before := time.Now().UTC()
	result := f.mutations.CreateOrder(domain.OrderInput{
		CustomerID: customer.Customer.ID,
		ProductIDs: []string{p1.Product.ID, p2.Product.ID},
	})
	after := time.Now().UTC()

	require.True(t, result.Success)
	require.NotNil(t, result.Order)
	require.Equal(t, int64(3500), result.Order.TotalMinor)
	require.False(t, result.Order.OrderDate.Before(before))
	require.False(t, result.Order.OrderDate.After(after))
}

func TestCreateOrder_DeduplicatesProductIDs(t *testing.T) {
	f := newFixture(t)

	customer := f.mutations.CreateCustomer(domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.True(t, customer.Success)
	p1 := f.mutations.CreateProduct(domain.ProductInput{Name: "Coffee", PriceMinor: 1000})
	require.True(t, p1.Success)

	result := f.mutations.CreateOrder(domain.OrderInput{
		CustomerID: customer.Customer.ID,
		ProductIDs: []string{p1.Product.ID, p1.Product.ID, p1.Product.ID},
	})

	require.True(t, result.Success)
	require.Equal(t, []string{p1.Product.ID}, result.Order.ProductIDs)
	require.Equal(t, int64(1000), result.Order.TotalMinor, "duplicate ids contribute once")
}

func TestCreateOrder_ReportsEveryMissingProduct(t *testing.T) {
	f := newFixture(t)

	customer := f.mutations.CreateCustomer(domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.True(t, customer.Success)
	p1 := f.mutations.CreateProduct(domain.ProductInput{Name: "Coffee", PriceMinor: 1000})
	require.True(t, p1.Success)

	result := f.mutations.CreateOrder(domain.OrderInput{
		CustomerID: customer.Customer.ID,
		ProductIDs: []string{p1.Product.ID, "ghost-1", "ghost-2"},
	})

	require.False(t, result.Success)
	require.Len(t, result.Errors, 2)
	require.Contains(t, result.Errors[0], "ghost-1")
	require.Contains(t, result.Errors[1], "ghost-2")

	orders, err := f.orders.List(domain.OrderFilter{})
	require.NoError(t, err)
	require.Empty(t, orders, "no partial order may be persisted")
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	f := newFixture(t)

	p1 := f.mutations.CreateProduct(domain.ProductInput{Name: "Coffee", PriceMinor: 1000})
	require.True(t, p1.Success)

	result := f.mutations.CreateOrder(domain.OrderInput{
		CustomerID: "ghost",
		ProductIDs: []string{p1.Product.ID},
	})

	require.False(t, result.Success)
	require.Contains(t, result.Errors[0], "customer ghost")
}

func TestCreateOrder_ExplicitOrderDate(t *testing.T) {
	f := newFixture(t)

	customer := f.mutations.CreateCustomer(domain.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.True(t, customer.Success)
	p1 := f.mutations.CreateProduct(domain.ProductInput{Name: "Coffee", PriceMinor: 1000})
	require.True(t, p1.Success)

	orderDate := time.Date(2025, 2, 14, 8, 30, 0, 0, time.UTC)
	result := f.mutations.CreateOrder(domain.OrderInput{
		CustomerID: customer.Customer.ID,
		ProductIDs: []string{p1.Product.ID},
		OrderDate:  &orderDate,
	})

	require.True(t, result.Success)
	require.True(t, result.Order.OrderDate.Equal(orderDate))
}

func TestUpdateLowStockProducts_Idempotent(t *testing.T) {
	f := newFixture(t)

	low := 3
	high := 50
	p1 := f.mutations.CreateProduct(domain.ProductInput{Name: "Low", PriceMinor: 1000, Stock: &low})
	require.True(t, p1.Success)
	p2 := f.mutations.CreateProduct(domain.ProductInput{Name: "High", PriceMinor: 1000, Stock: &high})
	require.True(t, p2.Success)

	first := f.mutations.UpdateLowStockProducts()
	require.True(t, first.Success)
	require.Len(t, first.UpdatedProducts, 1)
	require.Equal(t, 13, first.UpdatedProducts[0].Stock)

	// Все остатки выше порога — второй запуск ничего не обновляет.
	second := f.mutations.UpdateLowStockProducts()
	require.True(t, second.Success)
	require.Empty(t, second.UpdatedProducts)
	require.Equal(t, "No low-stock products to update.", second.Message)
}
