package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

func int64Ptr(v int64) *int64       { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestCustomerFilterMatches(t *testing.T) {
	created := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	customer := domain.Customer{
		Name:      "Alice Johnson",
		Email:     "alice@example.com",
		Phone:     "+15551234",
		CreatedAt: created,
	}

	cases := []struct {
		name   string
		filter domain.CustomerFilter
		want   bool
	}{
		{name: "empty filter", filter: domain.CustomerFilter{}, want: true},
		{name: "name substring case-insensitive", filter: domain.CustomerFilter{NameContains: "johnson"}, want: true},
		{name: "name mismatch", filter: domain.CustomerFilter{NameContains: "bob"}, want: false},
		{name: "email substring", filter: domain.CustomerFilter{EmailContains: "EXAMPLE"}, want: true},
		{name: "phone prefix", filter: domain.CustomerFilter{PhonePrefix: "+1"}, want: true},
		{name: "phone prefix mismatch", filter: domain.CustomerFilter{PhonePrefix: "+44"}, want: false},
		{name: "created range hit", filter: domain.CustomerFilter{CreatedFrom: timePtr(created.Add(-time.Hour)), CreatedTo: timePtr(created.Add(time.Hour))}, want: true},
		{name: "created before range", filter: domain.CustomerFilter{CreatedFrom: timePtr(created.Add(time.Hour))}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(customer); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestProductFilterMatches(t *testing.T) {
	product := domain.Product{Name: "Coffee Beans", PriceMinor: 1500, Stock: 4}

	if !(domain.ProductFilter{LowStock: true}).Matches(product) {
		t.Fatal("stock 4 must match low-stock filter")
	}
	if (domain.ProductFilter{LowStock: true}).Matches(domain.Product{Stock: 25}) {
		t.Fatal("stock 25 must not match low-stock filter")
	}
	if !(domain.ProductFilter{PriceFrom: int64Ptr(1000), PriceTo: int64Ptr(2000)}).Matches(product) {
		t.Fatal("price 1500 must be inside [1000, 2000]")
	}
	if (domain.ProductFilter{PriceTo: int64Ptr(1499)}).Matches(product) {
		t.Fatal("price 1500 must not match PriceTo=1499")
	}
	if !(domain.ProductFilter{NameContains: "coffee"}).Matches(product) {
		t.Fatal("name filter must be case-insensitive")
	}
}

func TestOrderFilterMatches(t *testing.T) {
	ordered := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	order := domain.Order{
		CustomerID: "c-1",
		ProductIDs: []string{"p-1", "p-2"},
		TotalMinor: 3500,
		OrderDate:  ordered,
	}

	if !(domain.OrderFilter{TotalFrom: int64Ptr(3500)}).Matches(order) {
		t.Fatal("inclusive lower bound must match")
	}
	if (domain.OrderFilter{TotalFrom: int64Ptr(3501)}).Matches(order) {
		t.Fatal("total below lower bound must not match")
	}
	if !(domain.OrderFilter{ProductID: "p-2"}).Matches(order) {
		t.Fatal("order containing the product must match")
	}
	if (domain.OrderFilter{ProductID: "p-9"}).Matches(order) {
		t.Fatal("order without the product must not match")
	}
	if !(domain.OrderFilter{OrderedFrom: timePtr(ordered.Add(-time.Minute)), OrderedTo: timePtr(ordered.Add(time.Minute))}).Matches(order) {
		t.Fatal("order date inside range must match")
	}
}
