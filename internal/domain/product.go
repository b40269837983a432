package domain

import (
	"strings"
	"time"
)

const (
	// LowStockThreshold — фиксированный порог «низкого остатка»: stock < 10.
	LowStockThreshold = 10
	// RestockAmount — на сколько единиц пополняется товар при плановом
	// пополнении низких остатков.
	RestockAmount = 10
)

// Product представляет товар каталога.
type Product struct {
	ID   string
	Name string
	// PriceMinor — цена в минимальных денежных единицах (центы/копейки).
	PriceMinor int64
	Stock      int
	CreatedAt  time.Time
}

// ProductInput — входные данные мутации создания товара.
type ProductInput struct {
	Name       string
	PriceMinor int64
	// Stock == nil означает «не задан», при создании подставляется 0.
	Stock *int
}

// Validate проверяет инварианты товара и возвращает список всех нарушений.
func (in ProductInput) Validate() []error {
	var errs []error

	if in.PriceMinor <= 0 {
		errs = append(errs, ErrPriceInvalid)
	}
	if in.Stock != nil && *in.Stock < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}

// NewProduct собирает товар из проверенных входных данных.
func NewProduct(id string, in ProductInput, now time.Time) Product {
	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	return Product{
		ID:         id,
		Name:       strings.TrimSpace(in.Name),
		PriceMinor: in.PriceMinor,
		Stock:      stock,
		CreatedAt:  now,
	}
}

// IsLowStock сообщает, опустился ли остаток ниже порога пополнения.
func (p Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}
