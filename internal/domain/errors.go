package domain

import "errors"

var (
	// Ошибка пустого или состоящего из пробелов имени клиента.
	ErrNameRequired = errors.New("name is required")
	// Ошибка отсутствующего email.
	ErrEmailRequired = errors.New("email is required")
	// Ошибка email, не похожего на local@domain.tld.
	ErrEmailInvalid = errors.New("invalid email format")
	// Ошибка повторного использования email (сравнение без учёта регистра).
	ErrEmailExists = errors.New("email exists")
	// Ошибка телефона, не подходящего ни под международный, ни под локальный формат.
	ErrPhoneInvalid = errors.New("invalid phone")
	// Ошибка неположительной цены товара.
	ErrPriceInvalid = errors.New("price must be greater than zero")
	// Ошибка отрицательного остатка товара.
	ErrStockNegative = errors.New("stock must be non-negative")
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerIDRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrProductsRequired = errors.New("order must contain at least one product")
	// ErrCustomerNotFound возвращается, если клиент не найден в хранилище.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если товар не найден в хранилище.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateID сигнализирует о попытке записать сущность с занятым ID.
	ErrDuplicateID = errors.New("record with this id already exists")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound проверяет, относится ли ошибка к отсутствующей сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsConflict проверяет, является ли ошибка конфликтом уникальности.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailExists) || errors.Is(err, ErrDuplicateID)
}

// ErrorMessages переводит список ошибок в список человекочитаемых строк
// для ответа мутации.
func ErrorMessages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return messages
}
