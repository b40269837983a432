package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

func TestProductRepository_PostgresCreateGetAndGetMany(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	laptop := domain.Product{
		ID:         uuid.NewString(),
		Name:       "Laptop",
		PriceMinor: 99999,
		Stock:      4,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	mouse := domain.Product{
		ID:         uuid.NewString(),
		Name:       "Mouse",
		PriceMinor: 2599,
		Stock:      40,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	for _, product := range []domain.Product{laptop, mouse} {
		if err := repo.Create(product); err != nil {
			t.Fatalf("create product: %v", err)
		}
	}

	loaded, err := repo.Get(laptop.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if loaded.PriceMinor != laptop.PriceMinor || loaded.Stock != laptop.Stock {
		t.Fatalf("unexpected product loaded: %+v", loaded)
	}

	if _, err := repo.Get(uuid.NewString()); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	ghost := uuid.NewString()
	found, err := repo.GetMany([]string{laptop.ID, ghost, mouse.ID})
	if err != nil {
		t.Fatalf("get many products: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 found products, got %d", len(found))
	}
	if _, ok := found[ghost]; ok {
		t.Fatal("missing product id must be absent from result")
	}
}

func TestProductRepository_PostgresListFilters(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	now := time.Now().UTC().Truncate(time.Microsecond)
	seed := []domain.Product{
		{ID: uuid.NewString(), Name: "Keyboard", PriceMinor: 4999, Stock: 3, CreatedAt: now},
		{ID: uuid.NewString(), Name: "Monitor", PriceMinor: 19999, Stock: 12, CreatedAt: now},
		{ID: uuid.NewString(), Name: "Cable", PriceMinor: 499, Stock: 0, CreatedAt: now},
	}
	for _, product := range seed {
		if err := repo.Create(product); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	lowStock, err := repo.List(domain.ProductFilter{LowStock: true})
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(lowStock) != 2 {
		t.Fatalf("expected 2 low-stock products, got %d", len(lowStock))
	}

	priceFrom := int64(1000)
	expensive, err := repo.List(domain.ProductFilter{PriceFrom: &priceFrom})
	if err != nil {
		t.Fatalf("list by price: %v", err)
	}
	if len(expensive) != 2 {
		t.Fatalf("expected 2 products above price, got %d", len(expensive))
	}

	byName, err := repo.List(domain.ProductFilter{NameContains: "mon"})
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Monitor" {
		t.Fatalf("unexpected result for name filter: %+v", byName)
	}
}

func TestProductRepository_PostgresRestockBelow(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewProductRepository(store)

	now := time.Now().UTC().Truncate(time.Microsecond)
	seed := []domain.Product{
		{ID: uuid.NewString(), Name: "Low A", PriceMinor: 100, Stock: 4, CreatedAt: now},
		{ID: uuid.NewString(), Name: "Low B", PriceMinor: 100, Stock: 0, CreatedAt: now},
		{ID: uuid.NewString(), Name: "At threshold", PriceMinor: 100, Stock: 10, CreatedAt: now},
	}
	for _, product := range seed {
		if err := repo.Create(product); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	updated, err := repo.RestockBelow(domain.LowStockThreshold, domain.RestockAmount)
	if err != nil {
		t.Fatalf("restock below: %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 restocked products, got %d", len(updated))
	}
	for _, product := range updated {
		if product.Stock < domain.LowStockThreshold {
			t.Fatalf("restocked product still below threshold: %+v", product)
		}
	}

	// Повторный запуск не должен менять ничего.
	again, err := repo.RestockBelow(domain.LowStockThreshold, domain.RestockAmount)
	if err != nil {
		t.Fatalf("second restock: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no products on second restock, got %d", len(again))
	}
}
