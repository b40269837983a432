package domain_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

func TestOrderInputValidate(t *testing.T) {
	ok := domain.OrderInput{CustomerID: "c-1", ProductIDs: []string{"p-1"}}
	if errs := ok.Validate(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}

	empty := domain.OrderInput{}
	errs := empty.Validate()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if !errors.Is(errs[0], domain.ErrCustomerIDRequired) {
		t.Fatalf("expected ErrCustomerIDRequired, got %v", errs[0])
	}
	if !errors.Is(errs[1], domain.ErrProductsRequired) {
		t.Fatalf("expected ErrProductsRequired, got %v", errs[1])
	}
}

func TestDedupeProductIDs(t *testing.T) {
	got := domain.DedupeProductIDs([]string{"p-2", "p-1", "p-2", "p-3", "p-1"})
	want := []string{"p-2", "p-1", "p-3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
