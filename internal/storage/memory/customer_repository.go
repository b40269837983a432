package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// customerRepositoryInMemory — простая in-memory реализация CustomerRepository.
type customerRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
	// emails индексирует занятые email в канонической форме.
	emails map[string]string
}

// NewCustomerRepository возвращает in-memory репозиторий для локальной
// разработки и тестов.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items:  make(map[string]domain.Customer),
		emails: make(map[string]string),
	}
}

// Create сохраняет нового клиента, если ID и email ещё не заняты.
func (r *customerRepositoryInMemory) Create(customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(customer)
}

// CreateMany сохраняет пакет атомарно: сначала проверяются все записи,
// вставка начинается только когда конфликтов нет.
func (r *customerRepositoryInMemory) CreateMany(customers []domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Дубликаты внутри самого пакета тоже считаются конфликтом.
	batchEmails := make(map[string]struct{}, len(customers))
	for _, customer := range customers {
		if _, exists := r.items[customer.ID]; exists {
			return domain.ErrDuplicateID
		}
		email := domain.NormalizeEmail(customer.Email)
		if _, taken := r.emails[email]; taken {
			return domain.ErrEmailExists
		}
		if _, taken := batchEmails[email]; taken {
			return domain.ErrEmailExists
		}
		batchEmails[email] = struct{}{}
	}

	for _, customer := range customers {
		if err := r.insertLocked(customer); err != nil {
			return err
		}
	}
	return nil
}

// Get возвращает клиента или ErrCustomerNotFound, если его нет.
func (r *customerRepositoryInMemory) Get(id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// EmailExists проверяет занятость email в канонической форме.
func (r *customerRepositoryInMemory) EmailExists(email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, taken := r.emails[domain.NormalizeEmail(email)]
	return taken, nil
}

// List возвращает клиентов, проходящих фильтр, в порядке создания.
func (r *customerRepositoryInMemory) List(filter domain.CustomerFilter) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.items))
	for _, customer := range r.items {
		if filter.Matches(customer) {
			result = append(result, customer)
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

func (r *customerRepositoryInMemory) insertLocked(customer domain.Customer) error {
	if _, exists := r.items[customer.ID]; exists {
		return domain.ErrDuplicateID
	}
	email := domain.NormalizeEmail(customer.Email)
	if _, taken := r.emails[email]; taken {
		return domain.ErrEmailExists
	}
	r.items[customer.ID] = customer
	r.emails[email] = customer.ID
	return nil
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
