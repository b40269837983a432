package crm

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// BatchPolicy задаёт поведение пакетного создания при ошибках отдельных
// элементов.
type BatchPolicy string

const (
	// PolicyBestEffort обрабатывает каждый элемент независимо: ошибка
	// одного не трогает ни более ранние, ни более поздние записи.
	PolicyBestEffort BatchPolicy = "best-effort"
	// PolicyFailFast отклоняет весь пакет без единой записи, если хотя бы
	// один элемент не проходит проверку или запись.
	PolicyFailFast BatchPolicy = "fail-fast"
)

// BulkCreateCustomers создаёт пакет клиентов, обрабатывая элементы строго
// в порядке входа. Исход каждого элемента возвращается отдельной записью
// вместе с исходным входом.
//
// Источник описывал fail-fast одновременно как «откат только упавшего
// элемента по savepoint» и как «исключение, прерывающее весь пакет».
// Здесь принята вторая трактовка: fail-fast означает «всё или ничего»,
// а поэлементная изоляция доступна через PolicyBestEffort.
func (m *Mutations) BulkCreateCustomers(inputs []domain.CustomerInput, policy BatchPolicy) BulkResult {
	start := time.Now()

	var result BulkResult
	switch policy {
	case PolicyFailFast:
		result = m.bulkCreateFailFast(inputs)
	default:
		result = m.bulkCreateBestEffort(inputs)
	}

	m.recordMutation(mutationBulkCreateCustomers, result.Success, time.Since(start))
	return result
}

// bulkCreateBestEffort пытается создать каждый элемент независимо от
// исходов остальных. Запись элемента изолирована: неудачная валидация или
// запись не оставляет частичных данных этого элемента и не откатывает уже
// зафиксированные.
func (m *Mutations) bulkCreateBestEffort(inputs []domain.CustomerInput) BulkResult {
	result := BulkResult{
		Total: len(inputs),
		Items: make([]BulkItemResult, 0, len(inputs)),
	}

	for _, in := range inputs {
		item := BulkItemResult{Input: in}

		errs, err := m.validateCustomer(in, nil)
		if err != nil {
			item.Errors = []string{err.Error()}
			result.Items = append(result.Items, item)
			result.ErrorCount++
			continue
		}
		if len(errs) > 0 {
			item.Errors = domain.ErrorMessages(errs)
			result.Items = append(result.Items, item)
			result.ErrorCount++
			continue
		}

		customer := domain.NewCustomer(uuid.NewString(), in, time.Now().UTC())
		if err := m.customers.Create(customer); err != nil {
			if domain.IsConflict(err) {
				item.Errors = []string{err.Error()}
			} else {
				m.logger.WithError(err).Warn("failed to persist bulk customer")
				item.Errors = []string{fmt.Sprintf("create customer: %v", err)}
			}
			result.Items = append(result.Items, item)
			result.ErrorCount++
			continue
		}

		m.enqueueEvent("customer", customer.ID, eventCustomerCreated, customerEventPayload(customer))

		item.Success = true
		item.Customer = &customer
		result.Items = append(result.Items, item)
		result.SuccessCount++
	}

	result.Success = result.ErrorCount == 0
	result.Message = bulkMessage(result)
	return result
}

// bulkCreateFailFast сначала проверяет все элементы. Любая ошибка
// валидации отклоняет пакет целиком без записей; фаза записи выполняется
// одним атомарным CreateMany, и неожиданная ошибка записи тоже отклоняет
// весь пакет.
func (m *Mutations) bulkCreateFailFast(inputs []domain.CustomerInput) BulkResult {
	result := BulkResult{
		Total: len(inputs),
		Items: make([]BulkItemResult, 0, len(inputs)),
	}

	// Дубликаты email внутри пакета считаются ошибкой более позднего
	// элемента.
	seenEmails := make(map[string]struct{}, len(inputs))
	hasErrors := false
	for _, in := range inputs {
		item := BulkItemResult{Input: in}

		errs, err := m.validateCustomer(in, seenEmails)
		if err != nil {
			item.Errors = []string{err.Error()}
		} else if len(errs) > 0 {
			item.Errors = domain.ErrorMessages(errs)
		}
		if len(item.Errors) > 0 {
			hasErrors = true
		} else {
			seenEmails[domain.NormalizeEmail(in.Email)] = struct{}{}
		}
		result.Items = append(result.Items, item)
	}

	if hasErrors {
		for i := range result.Items {
			if len(result.Items[i].Errors) == 0 {
				// Элемент сам по себе корректен, но пакет отклонён.
				result.Items[i].Errors = []string{"batch aborted: other items failed validation"}
			}
		}
		result.ErrorCount = result.Total
		result.Message = bulkMessage(result)
		return result
	}

	now := time.Now().UTC()
	customers := make([]domain.Customer, 0, len(inputs))
	for _, in := range inputs {
		customers = append(customers, domain.NewCustomer(uuid.NewString(), in, now))
	}

	if err := m.customers.CreateMany(customers); err != nil {
		m.logger.WithError(err).Warn("fail-fast bulk write aborted")
		for i := range result.Items {
			result.Items[i].Errors = []string{fmt.Sprintf("batch aborted: %v", err)}
		}
		result.ErrorCount = result.Total
		result.Message = bulkMessage(result)
		return result
	}

	for i := range customers {
		m.enqueueEvent("customer", customers[i].ID, eventCustomerCreated, customerEventPayload(customers[i]))
		result.Items[i].Success = true
		result.Items[i].Customer = &customers[i]
	}
	result.SuccessCount = result.Total
	result.Success = true
	result.Message = bulkMessage(result)
	return result
}

func bulkMessage(result BulkResult) string {
	return fmt.Sprintf("Created %d of %d customers (%d failed).",
		result.SuccessCount, result.Total, result.ErrorCount)
}
