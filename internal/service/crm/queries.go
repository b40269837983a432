package crm

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// Queries реализует read-only запросы CRM: фильтрацию по сущностям и пару
// производных выборок для периодических задач.
type Queries struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	logger    *log.Entry
}

// NewQueries конструирует сервис запросов.
func NewQueries(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	logger *log.Entry,
) *Queries {
	if logger == nil {
		logger = log.New().WithField("component", "crm-queries")
	}
	return &Queries{
		customers: customers,
		products:  products,
		orders:    orders,
		logger:    logger,
	}
}

// AllCustomers возвращает клиентов, проходящих фильтр.
func (q *Queries) AllCustomers(filter domain.CustomerFilter) ([]domain.Customer, error) {
	return q.customers.List(filter)
}

// AllProducts возвращает товары, проходящие фильтр.
func (q *Queries) AllProducts(filter domain.ProductFilter) ([]domain.Product, error) {
	return q.products.List(filter)
}

// AllOrders возвращает заказы, проходящие фильтр.
func (q *Queries) AllOrders(filter domain.OrderFilter) ([]domain.Order, error) {
	return q.orders.List(filter)
}

// Customer возвращает клиента по идентификатору.
func (q *Queries) Customer(id string) (domain.Customer, error) {
	return q.customers.Get(id)
}

// OrdersLastDays возвращает заказы за последние days суток, сначала новые.
func (q *Queries) OrdersLastDays(days int) ([]domain.Order, error) {
	from := time.Now().UTC().AddDate(0, 0, -days)
	return q.orders.List(domain.OrderFilter{OrderedFrom: &from})
}

// TotalRevenueMinor суммирует зафиксированные суммы всех заказов.
func (q *Queries) TotalRevenueMinor() (int64, error) {
	orders, err := q.orders.List(domain.OrderFilter{})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, order := range orders {
		total += order.TotalMinor
	}
	return total, nil
}
