package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// productRepositoryInMemory — простая in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий товаров.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет новый товар, если ID ещё не занят.
func (r *productRepositoryInMemory) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrDuplicateID
	}
	r.items[product.ID] = product
	return nil
}

// Get возвращает товар или ErrProductNotFound, если его нет.
func (r *productRepositoryInMemory) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// GetMany возвращает найденные товары; отсутствующие идентификаторы
// просто не попадают в результат.
func (r *productRepositoryInMemory) GetMany(ids []string) (map[string]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if product, ok := r.items[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

// List возвращает товары, проходящие фильтр, в порядке создания.
func (r *productRepositoryInMemory) List(filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		if filter.Matches(product) {
			result = append(result, product)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// RestockBelow пополняет товары с остатком ниже threshold под одной
// блокировкой, поэтому операция атомарна и идемпотентна после пополнения.
func (r *productRepositoryInMemory) RestockBelow(threshold, amount int) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := make([]domain.Product, 0)
	for id, product := range r.items {
		if product.Stock >= threshold {
			continue
		}
		product.Stock += amount
		r.items[id] = product
		updated = append(updated, product)
	}

	sort.Slice(updated, func(i, j int) bool {
		return updated[i].ID < updated[j].ID
	})

	return updated, nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
