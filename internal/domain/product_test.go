package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestProductInputValidate(t *testing.T) {
	cases := []struct {
		name string
		in   domain.ProductInput
		want []error
	}{
		{
			name: "ok with stock",
			in:   domain.ProductInput{Name: "Widget", PriceMinor: 999, Stock: intPtr(5)},
		},
		{
			name: "ok without stock",
			in:   domain.ProductInput{Name: "Widget", PriceMinor: 999},
		},
		{
			name: "zero price",
			in:   domain.ProductInput{Name: "Widget", PriceMinor: 0},
			want: []error{domain.ErrPriceInvalid},
		},
		{
			name: "negative price",
			in:   domain.ProductInput{Name: "Widget", PriceMinor: -100},
			want: []error{domain.ErrPriceInvalid},
		},
		{
			name: "negative stock",
			in:   domain.ProductInput{Name: "Widget", PriceMinor: 100, Stock: intPtr(-1)},
			want: []error{domain.ErrStockNegative},
		},
		{
			name: "both violations",
			in:   domain.ProductInput{Name: "Widget", PriceMinor: 0, Stock: intPtr(-3)},
			want: []error{domain.ErrPriceInvalid, domain.ErrStockNegative},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.in.Validate()
			if len(errs) != len(tc.want) {
				t.Fatalf("expected %d errors, got %v", len(tc.want), errs)
			}
			for i, want := range tc.want {
				if !errors.Is(errs[i], want) {
					t.Fatalf("error[%d]: expected %v, got %v", i, want, errs[i])
				}
			}
		})
	}
}

func TestNewProduct_StockDefaultsToZero(t *testing.T) {
	now := time.Now().UTC()
	product := domain.NewProduct("p-1", domain.ProductInput{Name: " Widget ", PriceMinor: 250}, now)

	if product.Stock != 0 {
		t.Fatalf("expected default stock 0, got %d", product.Stock)
	}
	if product.Name != "Widget" {
		t.Fatalf("expected trimmed name, got %q", product.Name)
	}
	if !product.IsLowStock() {
		t.Fatal("product with zero stock must be low stock")
	}
}

func TestProductIsLowStock_Threshold(t *testing.T) {
	if (domain.Product{Stock: domain.LowStockThreshold}).IsLowStock() {
		t.Fatal("stock at threshold must not be low stock")
	}
	if !(domain.Product{Stock: domain.LowStockThreshold - 1}).IsLowStock() {
		t.Fatal("stock below threshold must be low stock")
	}
}
