package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository.
// Для кросс-сущностных фильтров (имя клиента, имя товара) использует
// соседние репозитории, как PostgreSQL-реализация использует JOIN.
type orderRepositoryInMemory struct {
	mu        sync.RWMutex
	items     map[string]domain.Order
	customers domain.CustomerRepository
	products  domain.ProductRepository
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository(customers domain.CustomerRepository, products domain.ProductRepository) domain.OrderRepository {
	return &orderRepositoryInMemory{
		items:     make(map[string]domain.Order),
		customers: customers,
		products:  products,
	}
}

// Create сохраняет заказ вместе со связями. Под общей блокировкой запись
// либо появляется целиком, либо не появляется вовсе.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrDuplicateID
	}
	// Сохраняем копию среза связей, чтобы избежать мутаций извне.
	order.ProductIDs = append([]string(nil), order.ProductIDs...)
	r.items[order.ID] = order
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// List возвращает заказы, проходящие фильтр, сначала новые.
func (r *orderRepositoryInMemory) List(filter domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	orders := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if filter.Matches(order) {
			orders = append(orders, order)
		}
	}
	r.mu.RUnlock()

	// Кросс-сущностные поля разрешаем вне блокировки заказов.
	result := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		ok, err := r.matchesRelated(order, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, order)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

func (r *orderRepositoryInMemory) matchesRelated(order domain.Order, filter domain.OrderFilter) (bool, error) {
	if filter.CustomerNameContains != "" {
		customer, err := r.customers.Get(order.CustomerID)
		if err != nil {
			return false, err
		}
		if !containsFold(customer.Name, filter.CustomerNameContains) {
			return false, nil
		}
	}

	if filter.ProductNameContains != "" {
		products, err := r.products.GetMany(order.ProductIDs)
		if err != nil {
			return false, err
		}
		found := false
		for _, product := range products {
			if containsFold(product.Name, filter.ProductNameContains) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}

	return true, nil
}

func containsFold(value, substr string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
