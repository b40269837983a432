package crm

import "github.com/vladislavdragonenkov/crm/internal/domain"

// Результаты мутаций. Каждый ответ несёт флаг успеха, человекочитаемое
// сообщение и, при успехе, созданную сущность; при ошибке — полный список
// нарушений, а не только первое.

// CustomerResult — исход создания клиента.
type CustomerResult struct {
	Success  bool
	Message  string
	Errors   []string
	Customer *domain.Customer
}

// ProductResult — исход создания товара.
type ProductResult struct {
	Success bool
	Message string
	Errors  []string
	Product *domain.Product
}

// OrderResult — исход создания заказа.
type OrderResult struct {
	Success bool
	Message string
	Errors  []string
	Order   *domain.Order
}

// BulkItemResult — исход одного элемента пакетного создания: вход
// возвращается вызывающему вместе с результатом.
type BulkItemResult struct {
	Input    domain.CustomerInput
	Success  bool
	Errors   []string
	Customer *domain.Customer
}

// BulkResult — сводка пакетного создания клиентов.
type BulkResult struct {
	// Success истинен, только когда ErrorCount == 0.
	Success      bool
	Message      string
	Total        int
	SuccessCount int
	ErrorCount   int
	Items        []BulkItemResult
}

// RestockResult — исход пополнения низких остатков.
type RestockResult struct {
	Success bool
	Message string
	Errors  []string
	// UpdatedProducts — товары, которым добавили остаток в этот запуск.
	UpdatedProducts []domain.Product
}
