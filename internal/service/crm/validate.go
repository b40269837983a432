package crm

import (
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// Валидация, общая для одиночного и пакетного путей создания. Полевые
// проверки живут в domain; здесь к ним добавляются проверки по хранилищу
// (занятость email, существование ссылок). Все нарушения накапливаются.

// validateCustomer проверяет вход клиента и занятость email.
// seenEmails учитывает email более ранних элементов того же пакета.
func (m *Mutations) validateCustomer(in domain.CustomerInput, seenEmails map[string]struct{}) ([]error, error) {
	errs := in.Validate()

	email := domain.NormalizeEmail(in.Email)
	if !emailUsable(errs) {
		return errs, nil
	}

	if seenEmails != nil {
		if _, dup := seenEmails[email]; dup {
			return append(errs, domain.ErrEmailExists), nil
		}
	}

	exists, err := m.customers.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}
	if exists {
		errs = append(errs, domain.ErrEmailExists)
	}
	return errs, nil
}

// validateOrder проверяет вход заказа и существование клиента и товаров.
// Отсутствующие товары перечисляются поимённо, каждый отдельной ошибкой.
func (m *Mutations) validateOrder(in domain.OrderInput) ([]error, map[string]domain.Product, error) {
	errs := in.Validate()

	if in.CustomerID != "" {
		if _, err := m.customers.Get(in.CustomerID); err != nil {
			if !errors.Is(err, domain.ErrCustomerNotFound) {
				return nil, nil, fmt.Errorf("resolve customer %s: %w", in.CustomerID, err)
			}
			errs = append(errs, fmt.Errorf("customer %s: %w", in.CustomerID, domain.ErrCustomerNotFound))
		}
	}

	var found map[string]domain.Product
	if len(in.ProductIDs) > 0 {
		ids := domain.DedupeProductIDs(in.ProductIDs)
		var err error
		found, err = m.products.GetMany(ids)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve products: %w", err)
		}
		// Разница множеств: запрошенные минус найденные.
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				errs = append(errs, fmt.Errorf("product %s: %w", id, domain.ErrProductNotFound))
			}
		}
	}

	return errs, found, nil
}

// emailUsable сообщает, имеет ли смысл проверять уникальность email:
// при отсутствующем или некорректном email проверка по хранилищу лишняя.
func emailUsable(errs []error) bool {
	for _, err := range errs {
		if errors.Is(err, domain.ErrEmailRequired) || errors.Is(err, domain.ErrEmailInvalid) {
			return false
		}
	}
	return true
}
