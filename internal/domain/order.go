package domain

import "time"

// Order агрегирует заказ клиента и ссылки на заказанные товары.
type Order struct {
	ID         string
	CustomerID string
	// ProductIDs — множество товаров заказа: без дубликатов, в порядке
	// первого упоминания во входных данных.
	ProductIDs []string
	// TotalMinor фиксируется при создании как сумма текущих цен товаров
	// и позже не пересчитывается.
	TotalMinor int64
	// OrderDate — дата заказа; по умолчанию момент создания.
	OrderDate time.Time
	CreatedAt time.Time
}

// OrderInput — входные данные мутации создания заказа.
type OrderInput struct {
	CustomerID string
	ProductIDs []string
	// OrderDate == nil означает «взять текущее время».
	OrderDate *time.Time
}

// Validate проверяет полевые инварианты входа. Существование клиента и
// товаров проверяет сервис мутаций по хранилищу.
func (in OrderInput) Validate() []error {
	var errs []error

	if in.CustomerID == "" {
		errs = append(errs, ErrCustomerIDRequired)
	}
	if len(in.ProductIDs) == 0 {
		errs = append(errs, ErrProductsRequired)
	}

	return errs
}

// DedupeProductIDs убирает повторы идентификаторов, сохраняя порядок
// первого появления. Связь заказ—товар трактуется как множество.
func DedupeProductIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
