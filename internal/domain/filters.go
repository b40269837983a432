package domain

import (
	"slices"
	"strings"
	"time"
)

// Фильтры запросов чтения. Пустые строки и nil-границы означают
// «не фильтровать по этому полю»; строковые фильтры сравниваются без
// учёта регистра по вхождению подстроки.

// CustomerFilter отбирает клиентов по полям и диапазону даты создания.
type CustomerFilter struct {
	NameContains  string
	EmailContains string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	// PhonePrefix отбирает клиентов по началу номера, например "+1".
	PhonePrefix string
}

// Matches сообщает, проходит ли клиент фильтр.
func (f CustomerFilter) Matches(c Customer) bool {
	if !containsFold(c.Name, f.NameContains) {
		return false
	}
	if !containsFold(c.Email, f.EmailContains) {
		return false
	}
	if f.PhonePrefix != "" && !strings.HasPrefix(c.Phone, f.PhonePrefix) {
		return false
	}
	return inTimeRange(c.CreatedAt, f.CreatedFrom, f.CreatedTo)
}

// ProductFilter отбирает товары по имени, цене и остатку.
type ProductFilter struct {
	NameContains string
	PriceFrom    *int64
	PriceTo      *int64
	StockFrom    *int
	StockTo      *int
	// LowStock == true оставляет только товары с остатком ниже порога.
	LowStock bool
}

// Matches сообщает, проходит ли товар фильтр.
func (f ProductFilter) Matches(p Product) bool {
	if !containsFold(p.Name, f.NameContains) {
		return false
	}
	if f.PriceFrom != nil && p.PriceMinor < *f.PriceFrom {
		return false
	}
	if f.PriceTo != nil && p.PriceMinor > *f.PriceTo {
		return false
	}
	if f.StockFrom != nil && p.Stock < *f.StockFrom {
		return false
	}
	if f.StockTo != nil && p.Stock > *f.StockTo {
		return false
	}
	if f.LowStock && !p.IsLowStock() {
		return false
	}
	return true
}

// OrderFilter отбирает заказы по сумме, дате и связанным сущностям.
// Кросс-сущностные поля (имя клиента, имя товара) разрешаются реализацией
// хранилища: в памяти через соседние репозитории, в PostgreSQL через JOIN.
type OrderFilter struct {
	TotalFrom   *int64
	TotalTo     *int64
	OrderedFrom *time.Time
	OrderedTo   *time.Time
	// CustomerNameContains фильтрует по имени клиента заказа.
	CustomerNameContains string
	// ProductNameContains оставляет заказы хотя бы с одним подходящим товаром.
	ProductNameContains string
	// ProductID оставляет заказы, содержащие конкретный товар.
	ProductID string
}

// Matches проверяет локальные для заказа поля фильтра.
func (f OrderFilter) Matches(o Order) bool {
	if f.TotalFrom != nil && o.TotalMinor < *f.TotalFrom {
		return false
	}
	if f.TotalTo != nil && o.TotalMinor > *f.TotalTo {
		return false
	}
	if f.ProductID != "" && !slices.Contains(o.ProductIDs, f.ProductID) {
		return false
	}
	return inTimeRange(o.OrderDate, f.OrderedFrom, f.OrderedTo)
}

func containsFold(value, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}

func inTimeRange(value time.Time, from, to *time.Time) bool {
	if from != nil && value.Before(*from) {
		return false
	}
	if to != nil && value.After(*to) {
		return false
	}
	return true
}
